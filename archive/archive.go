// Package archive implements the kernel's binary serialization format
// (spec.md §4.5, §6): a magic header, a version byte, an atom table
// (deduplicated, zero-terminated strings), a node table (each entry a
// property bag of (name-atom, type, value) triples referencing earlier
// entries by index), and an expression table (name-atom, root-node-index
// pairs, so one archive can carry several independently-named root
// expressions), with every node deduplicated by pointer identity on write so
// a shared subexpression is stored once. Deserialization dispatches on a
// class-name atom to a registered instantiation function that consumes
// properties by name, rather than a type switch, so adding a node kind never
// means growing a switch in this file.
package archive

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/loveq369/symkernel/kernel"
	"github.com/loveq369/symkernel/numeric"
)

// Magic identifies the archive format; Version is bumped on incompatible
// layout changes.
const (
	Magic         = "GARC"
	Version  byte = 1
)

// ErrBadMagic is returned when a stream doesn't start with Magic.
var ErrBadMagic = errors.New("archive: bad magic header")

// ErrUnsupportedVersion is returned for a version byte outside the accepted
// [min, max] window (see SetAcceptedVersionRange).
var ErrUnsupportedVersion = errors.New("archive: unsupported version")

var (
	acceptedVersionMu  sync.Mutex
	minAcceptedVersion = Version
	maxAcceptedVersion = Version
)

// SetAcceptedVersionRange installs the inclusive [min, max] archive version
// window Read will accept, per spec.md §4.5's "the reader rejects versions
// outside [current − age, current]" — config.Config.Apply calls this with
// ArchiveMinVersion/ArchiveMaxVersion so the window is a process-wide policy
// rather than hardcoded to the single version this package currently emits.
func SetAcceptedVersionRange(min, max byte) {
	acceptedVersionMu.Lock()
	defer acceptedVersionMu.Unlock()
	minAcceptedVersion, maxAcceptedVersion = min, max
}

func versionAccepted(v byte) bool {
	acceptedVersionMu.Lock()
	defer acceptedVersionMu.Unlock()
	return v >= minAcceptedVersion && v <= maxAcceptedVersion
}

// Class names used as the discriminator atom for every node table entry.
// These double as the key into the decoders registry below. The four
// numeric classes are numeric.ClassOf's own vocabulary.
const (
	classInteger    = numeric.ClassInteger
	classRational   = numeric.ClassRational
	classComplex    = numeric.ClassComplex
	classFloat      = numeric.ClassFloat
	classSymbol     = "symbol"
	classSum        = "sum"
	classProduct    = "product"
	classPower      = "power"
	classFunction   = "function"
	classList       = "list"
	classTuple      = "tuple"
	classConstant   = "constant"
	classNCProduct  = "ncproduct"
	classRelational = "relational"
	classMatrix     = "matrix"
	classDerivative = "derivative"
	classSeries     = "series"
)

// defaultRootName is the expression-table entry name Write uses for its
// single root expression; Read looks a root up under this name.
const defaultRootName = "root"

var log = zap.NewNop()

// SetLogger installs the *zap.Logger used for archive trace logging
// (defaults to a no-op logger, so library use without explicit setup stays
// silent).
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// propType is the 3-bit type tag spec.md §4.5 describes for a property's
// (name-atom, type, value) triple.
type propType byte

const (
	typeBool     propType = 0
	typeUnsigned propType = 1
	typeString   propType = 2
	typeNode     propType = 3
)

// property is one entry in a node's property bag. val is always stored as a
// uint64 and reinterpreted per typ at read time: the literal value for
// bool/unsigned, an atom index for string, a node-table index for node.
type property struct {
	name uint32
	typ  propType
	val  uint64
}

// writer accumulates the atom table (interned strings, including every
// node's class-name discriminator and every property name) and the node
// table (interned expressions, referenced by table index) while walking the
// expression tree once.
type writer struct {
	atoms     []string
	atomIndex map[string]uint32
	nodes     [][]byte // encoded node table entries, in write order
	nodeIndex map[kernel.Expr]uint32
}

func newWriter() *writer {
	return &writer{atomIndex: map[string]uint32{}, nodeIndex: map[kernel.Expr]uint32{}}
}

func (w *writer) atom(s string) uint32 {
	if idx, ok := w.atomIndex[s]; ok {
		return idx
	}
	idx := uint32(len(w.atoms))
	w.atoms = append(w.atoms, s)
	w.atomIndex[s] = idx
	return idx
}

func (w *writer) propBool(name string, v bool) property {
	val := uint64(0)
	if v {
		val = 1
	}
	return property{name: w.atom(name), typ: typeBool, val: val}
}

func (w *writer) propUnsigned(name string, v uint64) property {
	return property{name: w.atom(name), typ: typeUnsigned, val: v}
}

func (w *writer) propString(name, s string) property {
	return property{name: w.atom(name), typ: typeString, val: uint64(w.atom(s))}
}

func (w *writer) propNode(name string, idx uint32) property {
	return property{name: w.atom(name), typ: typeNode, val: uint64(idx)}
}

// Write encodes e onto stream in the GARC format, as the sole root
// expression, named defaultRootName in the expression table.
func Write(stream io.Writer, e kernel.Expr) error {
	return WriteNamed(stream, map[string]kernel.Expr{defaultRootName: e})
}

// WriteNamed encodes exprs onto stream, each stored under its given name in
// the archive's expression table (spec.md §4.5's "an expression table, each
// entry: name-atom id, root-node id"), so one archive can carry several
// independently-named root expressions sharing a single atom/node table.
// Names are written in sorted order so the output is deterministic.
func WriteNamed(stream io.Writer, exprs map[string]kernel.Expr) error {
	traceID := uuid.New().String()
	log.Debug("archive write begin", zap.String("trace_id", traceID), zap.Int("roots", len(exprs)))

	w := newWriter()
	names := make([]string, 0, len(exprs))
	for name := range exprs {
		names = append(names, name)
	}
	sort.Strings(names)

	type rootEntry struct {
		nameAtom uint32
		nodeIdx  uint32
	}
	roots := make([]rootEntry, 0, len(names))
	for _, name := range names {
		idx, err := w.encode(exprs[name])
		if err != nil {
			log.Warn("archive write failed", zap.String("trace_id", traceID), zap.Error(err))
			return err
		}
		roots = append(roots, rootEntry{nameAtom: w.atom(name), nodeIdx: idx})
	}

	bw := bufio.NewWriter(stream)
	if _, err := bw.WriteString(Magic); err != nil {
		return err
	}
	if err := bw.WriteByte(Version); err != nil {
		return err
	}
	putUvarint(bw, uint64(len(w.atoms)))
	for _, a := range w.atoms {
		bw.WriteString(a)
		bw.WriteByte(0)
	}
	putUvarint(bw, uint64(len(w.nodes)))
	for _, n := range w.nodes {
		putUvarint(bw, uint64(len(n)))
		bw.Write(n)
	}
	putUvarint(bw, uint64(len(roots)))
	for _, r := range roots {
		putUvarint(bw, uint64(r.nameAtom))
		putUvarint(bw, uint64(r.nodeIdx))
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	log.Debug("archive write done", zap.String("trace_id", traceID),
		zap.Int("atoms", len(w.atoms)), zap.Int("nodes", len(w.nodes)), zap.Int("roots", len(roots)))
	return nil
}

// encode returns the node-table index for e, writing a new entry only if e
// (by pointer identity) hasn't already been encoded — the de-duplication
// spec.md §4.5 requires.
func (w *writer) encode(e kernel.Expr) (uint32, error) {
	if idx, ok := w.nodeIndex[e]; ok {
		return idx, nil
	}
	className := classNameOf(e)
	enc, ok := encoders[className]
	if !ok {
		return 0, errors.Errorf("archive: unsupported node kind %s", e.Kind())
	}
	props, err := enc(w, e)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	putUvarint(&buf, uint64(w.atom(className)))
	putUvarint(&buf, uint64(len(props)))
	for _, p := range props {
		putUvarint(&buf, uint64(p.name))
		buf.WriteByte(byte(p.typ))
		putUvarint(&buf, p.val)
	}
	idx := uint32(len(w.nodes))
	w.nodes = append(w.nodes, buf.Bytes())
	w.nodeIndex[e] = idx
	return idx, nil
}

// classNameOf returns the archive class-name discriminator for e, the same
// name used as the encoders/decoders registry key.
func classNameOf(e kernel.Expr) string {
	switch t := e.(type) {
	case *kernel.Num:
		return numeric.ClassOf(t.Value())
	case *kernel.Symbol:
		return classSymbol
	case *kernel.Sum:
		return classSum
	case *kernel.Product:
		return classProduct
	case *kernel.Power:
		return classPower
	case *kernel.Function:
		return classFunction
	case *kernel.List:
		return classList
	case *kernel.Tuple:
		return classTuple
	case *kernel.Constant:
		return classConstant
	case *kernel.NCProduct:
		return classNCProduct
	case *kernel.Relational:
		return classRelational
	case *kernel.Matrix:
		return classMatrix
	case *kernel.DerivativeOf:
		return classDerivative
	case *kernel.Series:
		return classSeries
	}
	return ""
}

// encoderFunc builds the property list for e (not including the class-name
// atom prefix, which encode writes uniformly).
type encoderFunc func(w *writer, e kernel.Expr) ([]property, error)

// decoderFunc reconstructs e's Expr from its already-decoded property list
// (the class-name atom has already been consumed), resolving any referenced
// node-table indices through r.
type decoderFunc func(r *reader, props []decodedProp) (kernel.Expr, error)

var encoders = map[string]encoderFunc{}
var decoders = map[string]decoderFunc{}

func registerNumericClass(name string) {
	encoders[name] = func(w *writer, e kernel.Expr) ([]property, error) {
		n := e.(*kernel.Num)
		return []property{w.propString("value", n.Value().String())}, nil
	}
	decoders[name] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		value, err := propString(r, props, "value")
		if err != nil {
			return nil, err
		}
		n, err := numeric.ParseLiteral(name, value)
		if err != nil {
			return nil, err
		}
		return kernel.NewNum(n), nil
	}
}

func init() {
	for _, name := range []string{classInteger, classRational, classComplex, classFloat} {
		registerNumericClass(name)
	}

	encoders[classSymbol] = func(w *writer, e kernel.Expr) ([]property, error) {
		s := e.(*kernel.Symbol)
		return []property{
			w.propString("name", s.Name()),
			w.propUnsigned("serial", s.Serial()),
		}, nil
	}
	decoders[classSymbol] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		name, err := propString(r, props, "name")
		if err != nil {
			return nil, err
		}
		return kernel.NewSymbol(name), nil
	}

	encoders[classSum] = seqEncoder("term", func(e kernel.Expr) []kernel.Expr { return e.(*kernel.Sum).Terms() })
	decoders[classSum] = seqDecoder("term", func(items []kernel.Expr) kernel.Expr { return kernel.AddOf(items...) })

	encoders[classProduct] = seqEncoder("factor", func(e kernel.Expr) []kernel.Expr { return e.(*kernel.Product).Factors() })
	decoders[classProduct] = seqDecoder("factor", func(items []kernel.Expr) kernel.Expr { return kernel.MulOf(items...) })

	encoders[classPower] = func(w *writer, e kernel.Expr) ([]property, error) {
		p := e.(*kernel.Power)
		baseIdx, err := w.encode(p.Base())
		if err != nil {
			return nil, err
		}
		expIdx, err := w.encode(p.Exp())
		if err != nil {
			return nil, err
		}
		return []property{w.propNode("base", baseIdx), w.propNode("exp", expIdx)}, nil
	}
	decoders[classPower] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		base, err := propNode(r, props, "base")
		if err != nil {
			return nil, err
		}
		exp, err := propNode(r, props, "exp")
		if err != nil {
			return nil, err
		}
		return kernel.PowOf(base, exp), nil
	}

	encoders[classFunction] = func(w *writer, e kernel.Expr) ([]property, error) {
		f := e.(*kernel.Function)
		props := []property{w.propString("name", f.Name())}
		for _, a := range f.Args() {
			idx, err := w.encode(a)
			if err != nil {
				return nil, err
			}
			props = append(props, w.propNode("arg", idx))
		}
		return props, nil
	}
	decoders[classFunction] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		name, err := propString(r, props, "name")
		if err != nil {
			return nil, err
		}
		args, err := propNodes(r, props, "arg")
		if err != nil {
			return nil, err
		}
		return kernel.FuncOf(name, args...), nil
	}

	encoders[classList] = seqEncoder("item", func(e kernel.Expr) []kernel.Expr { return e.(*kernel.List).Items() })
	decoders[classList] = seqDecoder("item", func(items []kernel.Expr) kernel.Expr { return kernel.ListOf(items...) })

	encoders[classTuple] = seqEncoder("item", func(e kernel.Expr) []kernel.Expr { return e.(*kernel.Tuple).Items() })
	decoders[classTuple] = seqDecoder("item", func(items []kernel.Expr) kernel.Expr { return kernel.TupleOf(items...) })

	encoders[classConstant] = func(w *writer, e kernel.Expr) ([]property, error) {
		c := e.(*kernel.Constant)
		return []property{w.propString("name", c.Name())}, nil
	}
	decoders[classConstant] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		name, err := propString(r, props, "name")
		if err != nil {
			return nil, err
		}
		c, ok := kernel.LookupConstant(name)
		if !ok {
			return nil, errors.Wrapf(kernel.ErrUnarchive, "unregistered constant %q", name)
		}
		return c, nil
	}

	encoders[classNCProduct] = seqEncoder("factor", func(e kernel.Expr) []kernel.Expr { return e.(*kernel.NCProduct).Factors() })
	decoders[classNCProduct] = seqDecoder("factor", func(items []kernel.Expr) kernel.Expr { return kernel.NCMulOf(items...) })

	encoders[classRelational] = func(w *writer, e kernel.Expr) ([]property, error) {
		rel := e.(*kernel.Relational)
		lhsIdx, err := w.encode(rel.LHS())
		if err != nil {
			return nil, err
		}
		rhsIdx, err := w.encode(rel.RHS())
		if err != nil {
			return nil, err
		}
		return []property{
			w.propString("op", rel.Operator().String()),
			w.propNode("lhs", lhsIdx),
			w.propNode("rhs", rhsIdx),
		}, nil
	}
	decoders[classRelational] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		opStr, err := propString(r, props, "op")
		if err != nil {
			return nil, err
		}
		op, ok := kernel.ParseRelOp(opStr)
		if !ok {
			return nil, errors.Errorf("archive: unknown relational operator %q", opStr)
		}
		lhs, err := propNode(r, props, "lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := propNode(r, props, "rhs")
		if err != nil {
			return nil, err
		}
		return kernel.RelOf(lhs, rhs, op), nil
	}

	encoders[classMatrix] = func(w *writer, e kernel.Expr) ([]property, error) {
		m := e.(*kernel.Matrix)
		props := []property{
			w.propUnsigned("rows", uint64(m.Rows())),
			w.propUnsigned("cols", uint64(m.Cols())),
		}
		for i := 0; i < m.Rows(); i++ {
			for j := 0; j < m.Cols(); j++ {
				idx, err := w.encode(m.Get(i, j))
				if err != nil {
					return nil, err
				}
				props = append(props, w.propNode("cell", idx))
			}
		}
		return props, nil
	}
	decoders[classMatrix] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		rows, err := propUnsigned(props, "rows")
		if err != nil {
			return nil, err
		}
		cols, err := propUnsigned(props, "cols")
		if err != nil {
			return nil, err
		}
		cells, err := propNodes(r, props, "cell")
		if err != nil {
			return nil, err
		}
		if uint64(len(cells)) != rows*cols {
			return nil, errors.Errorf("archive: matrix expects %d cells, got %d", rows*cols, len(cells))
		}
		return kernel.MatrixOf(int(rows), int(cols), cells), nil
	}

	encoders[classDerivative] = func(w *writer, e kernel.Expr) ([]property, error) {
		d := e.(*kernel.DerivativeOf)
		fnIdx, err := w.encode(d.Op(0))
		if err != nil {
			return nil, err
		}
		wrtIdx, err := w.encode(d.Op(1))
		if err != nil {
			return nil, err
		}
		return []property{w.propNode("fn", fnIdx), w.propNode("wrt", wrtIdx)}, nil
	}
	decoders[classDerivative] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		fn, err := propNode(r, props, "fn")
		if err != nil {
			return nil, err
		}
		wrt, err := propNode(r, props, "wrt")
		if err != nil {
			return nil, err
		}
		return kernel.NewDerivativeOf(fn, wrt), nil
	}

	encoders[classSeries] = func(w *writer, e kernel.Expr) ([]property, error) {
		s := e.(*kernel.Series)
		varIdx, err := w.encode(s.Variable())
		if err != nil {
			return nil, err
		}
		pointIdx, err := w.encode(s.Point())
		if err != nil {
			return nil, err
		}
		props := []property{
			w.propNode("variable", varIdx),
			w.propNode("point", pointIdx),
			w.propUnsigned("order", uint64(s.Order())),
		}
		for _, c := range s.Coeffs() {
			idx, err := w.encode(c)
			if err != nil {
				return nil, err
			}
			props = append(props, w.propNode("coeff", idx))
		}
		return props, nil
	}
	decoders[classSeries] = func(r *reader, props []decodedProp) (kernel.Expr, error) {
		variable, err := propNode(r, props, "variable")
		if err != nil {
			return nil, err
		}
		point, err := propNode(r, props, "point")
		if err != nil {
			return nil, err
		}
		order, err := propUnsigned(props, "order")
		if err != nil {
			return nil, err
		}
		coeffs, err := propNodes(r, props, "coeff")
		if err != nil {
			return nil, err
		}
		return kernel.SeriesOf(variable, point, coeffs, int(order)), nil
	}
}

// seqEncoder builds an encoderFunc for any node kind whose property bag is
// just a repeated node property under one name (Sum's "term", Product's
// "factor", List/Tuple's "item", NCProduct's "factor" all share this shape).
func seqEncoder(propName string, itemsOf func(kernel.Expr) []kernel.Expr) encoderFunc {
	return func(w *writer, e kernel.Expr) ([]property, error) {
		items := itemsOf(e)
		props := make([]property, 0, len(items))
		for _, it := range items {
			idx, err := w.encode(it)
			if err != nil {
				return nil, err
			}
			props = append(props, w.propNode(propName, idx))
		}
		return props, nil
	}
}

// seqDecoder builds a decoderFunc for the shape seqEncoder writes, handing
// the resolved child list to build so the caller's constructor (AddOf,
// MulOf, ListOf, TupleOf, NCMulOf) re-derives the node's own canonical form.
func seqDecoder(propName string, build func([]kernel.Expr) kernel.Expr) decoderFunc {
	return func(r *reader, props []decodedProp) (kernel.Expr, error) {
		items, err := propNodes(r, props, propName)
		if err != nil {
			return nil, err
		}
		return build(items), nil
	}
}

func putUvarint(buf interface{ Write([]byte) (int, error) }, v uint64) {
	var tmp [10]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	n++
	buf.Write(tmp[:n])
}

// Read decodes a GARC stream's sole or defaultRootName-named root expression
// back into an Expr tree. Use ReadNamed to retrieve every named root an
// archive carries.
func Read(stream io.Reader) (kernel.Expr, error) {
	roots, err := ReadNamed(stream)
	if err != nil {
		return nil, err
	}
	if e, ok := roots[defaultRootName]; ok {
		return e, nil
	}
	for _, e := range roots {
		return e, nil
	}
	return nil, errors.Wrap(kernel.ErrUnarchive, "archive has no root expression")
}

// ReadNamed decodes every named root expression in a GARC stream, sharing
// pointers for every node table entry that appears more than once across the
// whole archive (the inverse of the writer's de-duplication).
func ReadNamed(stream io.Reader) (map[string]kernel.Expr, error) {
	traceID := uuid.New().String()
	log.Debug("archive read begin", zap.String("trace_id", traceID))

	br := bufio.NewReader(stream)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, ErrBadMagic
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if !versionAccepted(version) {
		return nil, ErrUnsupportedVersion
	}

	atomCount, err := readUvarint(br)
	if err != nil {
		return nil, err
	}
	atoms := make([]string, atomCount)
	for i := range atoms {
		s, err := readZeroTerminated(br)
		if err != nil {
			return nil, err
		}
		atoms[i] = s
	}

	nodeCount, err := readUvarint(br)
	if err != nil {
		return nil, err
	}
	raw := make([][]byte, nodeCount)
	for i := range raw {
		n, err := readUvarint(br)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		raw[i] = buf
	}

	rootCount, err := readUvarint(br)
	if err != nil {
		return nil, err
	}
	type rootEntry struct {
		name    string
		nodeIdx uint32
	}
	rootEntries := make([]rootEntry, rootCount)
	for i := range rootEntries {
		nameIdx, err := readUvarint(br)
		if err != nil {
			return nil, err
		}
		if int(nameIdx) >= len(atoms) {
			return nil, errors.Wrapf(kernel.ErrUnarchive, "root name atom index %d out of range", nameIdx)
		}
		nodeIdx, err := readUvarint(br)
		if err != nil {
			return nil, err
		}
		rootEntries[i] = rootEntry{name: atoms[nameIdx], nodeIdx: uint32(nodeIdx)}
	}

	r := &reader{atoms: atoms, raw: raw, resolved: make([]kernel.Expr, len(raw))}
	roots := make(map[string]kernel.Expr, len(rootEntries))
	for _, re := range rootEntries {
		e, err := r.resolve(re.nodeIdx)
		if err != nil {
			log.Warn("archive read failed", zap.String("trace_id", traceID), zap.Error(err))
			return nil, err
		}
		roots[re.name] = e
	}
	log.Debug("archive read done", zap.String("trace_id", traceID),
		zap.Int("atoms", len(atoms)), zap.Int("nodes", len(raw)), zap.Int("roots", len(roots)))
	return roots, nil
}

// decodedProp is one property read back off the wire, with its name already
// resolved through the atom table.
type decodedProp struct {
	name string
	typ  propType
	val  uint64
}

func findProp(props []decodedProp, name string) (decodedProp, bool) {
	for _, p := range props {
		if p.name == name {
			return p, true
		}
	}
	return decodedProp{}, false
}

func findProps(props []decodedProp, name string) []decodedProp {
	var out []decodedProp
	for _, p := range props {
		if p.name == name {
			out = append(out, p)
		}
	}
	return out
}

func propString(r *reader, props []decodedProp, name string) (string, error) {
	p, ok := findProp(props, name)
	if !ok {
		return "", errors.Errorf("archive: missing property %q", name)
	}
	if int(p.val) >= len(r.atoms) {
		return "", errors.Wrapf(kernel.ErrUnarchive, "string property %q atom index %d out of range", name, p.val)
	}
	return r.atoms[p.val], nil
}

func propUnsigned(props []decodedProp, name string) (uint64, error) {
	p, ok := findProp(props, name)
	if !ok {
		return 0, errors.Errorf("archive: missing property %q", name)
	}
	return p.val, nil
}

func propNode(r *reader, props []decodedProp, name string) (kernel.Expr, error) {
	p, ok := findProp(props, name)
	if !ok {
		return nil, errors.Errorf("archive: missing property %q", name)
	}
	return r.resolve(uint32(p.val))
}

func propNodes(r *reader, props []decodedProp, name string) ([]kernel.Expr, error) {
	matches := findProps(props, name)
	out := make([]kernel.Expr, len(matches))
	for i, p := range matches {
		e, err := r.resolve(uint32(p.val))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

type reader struct {
	atoms    []string
	raw      [][]byte
	resolved []kernel.Expr
}

func (r *reader) resolve(idx uint32) (kernel.Expr, error) {
	if int(idx) >= len(r.raw) {
		return nil, errors.Wrapf(kernel.ErrUnarchive, "node index %d out of range", idx)
	}
	if r.resolved[idx] != nil {
		return r.resolved[idx], nil
	}
	buf := bytes.NewReader(r.raw[idx])
	e, err := r.decodeOne(buf)
	if err != nil {
		return nil, err
	}
	r.resolved[idx] = e
	return e, nil
}

func (r *reader) decodeOne(buf *bytes.Reader) (kernel.Expr, error) {
	classAtomIdx, err := readUvarint(buf)
	if err != nil {
		return nil, err
	}
	if int(classAtomIdx) >= len(r.atoms) {
		return nil, errors.Wrapf(kernel.ErrUnarchive, "class atom index %d out of range", classAtomIdx)
	}
	className := r.atoms[classAtomIdx]
	dec, ok := decoders[className]
	if !ok {
		return nil, errors.Wrapf(kernel.ErrUnarchive, "unknown node class %q", className)
	}
	propCount, err := readUvarint(buf)
	if err != nil {
		return nil, err
	}
	props := make([]decodedProp, propCount)
	for i := range props {
		nameIdx, err := readUvarint(buf)
		if err != nil {
			return nil, err
		}
		if int(nameIdx) >= len(r.atoms) {
			return nil, errors.Wrapf(kernel.ErrUnarchive, "property name atom index %d out of range", nameIdx)
		}
		typByte, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		val, err := readUvarint(buf)
		if err != nil {
			return nil, err
		}
		props[i] = decodedProp{name: r.atoms[nameIdx], typ: propType(typByte), val: val}
	}
	return dec(r, props)
}

func readUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}

// readZeroTerminated reads an atom string written as raw bytes followed by a
// single 0x00 terminator (spec.md §4.5: "Strings are zero-terminated").
func readZeroTerminated(r io.ByteReader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

// Package exprjson marshals kernel.Expr trees to and from a structural JSON
// form, for front ends (cmd/mcp-server) that need to accept and return
// expressions over a wire format without any text-grammar parsing: it is a
// direct field-for-field mirror of node kind and children, the JSON
// analogue of the archive package's binary node table, in the same
// map[string]interface{} plus "type" discriminator shape the teacher's own
// ToJSON/FromJSON used for its flat expression type.
package exprjson

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/loveq369/symkernel/kernel"
	"github.com/loveq369/symkernel/numeric"
)

// Marshal renders e as a JSON document.
func Marshal(e kernel.Expr) ([]byte, error) {
	return json.Marshal(toMap(e))
}

// ToMap renders e as the map[string]interface{} Marshal would encode,
// for callers embedding it in a larger JSON document rather than encoding
// it standalone.
func ToMap(e kernel.Expr) map[string]interface{} {
	return toMap(e)
}

// Unmarshal parses data produced by Marshal (or built by hand in the same
// shape) back into an Expr.
func Unmarshal(data []byte) (kernel.Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FromMap(m)
}

func toMap(e kernel.Expr) map[string]interface{} {
	switch t := e.(type) {
	case *kernel.Num:
		v := t.Value()
		return map[string]interface{}{
			"type":  "num",
			"class": numeric.ClassOf(v),
			"value": v.String(),
		}
	case *kernel.Symbol:
		return map[string]interface{}{"type": "symbol", "name": t.Name()}
	case *kernel.Sum:
		return map[string]interface{}{"type": "sum", "args": toMapSlice(t.Terms())}
	case *kernel.Product:
		return map[string]interface{}{"type": "product", "args": toMapSlice(t.Factors())}
	case *kernel.Power:
		return map[string]interface{}{
			"type": "power",
			"base": toMap(t.Base()),
			"exp":  toMap(t.Exp()),
		}
	case *kernel.Function:
		return map[string]interface{}{
			"type": "function",
			"name": t.Name(),
			"args": toMapSlice(t.Args()),
		}
	case *kernel.List:
		return map[string]interface{}{"type": "list", "args": toMapSlice(t.Items())}
	case *kernel.Tuple:
		return map[string]interface{}{"type": "tuple", "args": toMapSlice(t.Items())}
	case *kernel.Constant:
		return map[string]interface{}{"type": "constant", "name": t.Name()}
	case *kernel.NCProduct:
		return map[string]interface{}{"type": "ncproduct", "args": toMapSlice(t.Factors())}
	case *kernel.Relational:
		return map[string]interface{}{
			"type": "relational",
			"op":   t.Operator().String(),
			"lhs":  toMap(t.LHS()),
			"rhs":  toMap(t.RHS()),
		}
	case *kernel.Matrix:
		rows := make([]interface{}, t.Rows())
		for i := 0; i < t.Rows(); i++ {
			row := make([]interface{}, t.Cols())
			for j := 0; j < t.Cols(); j++ {
				row[j] = toMap(t.Get(i, j))
			}
			rows[i] = row
		}
		return map[string]interface{}{"type": "matrix", "rows": t.Rows(), "cols": t.Cols(), "data": rows}
	case *kernel.DerivativeOf:
		return map[string]interface{}{
			"type": "derivative",
			"fn":   toMap(t.Op(0)),
			"wrt":  toMap(t.Op(1)),
		}
	case *kernel.Series:
		return map[string]interface{}{
			"type":     "series",
			"variable": toMap(t.Variable()),
			"point":    toMap(t.Point()),
			"order":    t.Order(),
			"coeffs":   toMapSlice(t.Coeffs()),
		}
	}
	return map[string]interface{}{"type": "unsupported", "kind": e.Kind().String()}
}

func toMapSlice(items []kernel.Expr) []interface{} {
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = toMap(it)
	}
	return out
}

// FromMap builds an Expr from a single decoded JSON object, recursing into
// nested objects/arrays for composite node kinds.
func FromMap(data map[string]interface{}) (kernel.Expr, error) {
	if data == nil {
		return nil, errors.New("exprjson: expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, errors.New("exprjson: missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, errors.New("exprjson: 'type' must be a non-empty string")
	}

	str := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", errors.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok {
			return "", errors.Errorf("%s: %q must be a string", typ, field)
		}
		return s, nil
	}
	obj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}
	args := func() ([]kernel.Expr, error) {
		v, ok := data["args"]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, "args")
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an array", typ, "args")
		}
		out := make([]kernel.Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("%s: args[%d] must be an object", typ, i)
			}
			e, err := FromMap(m)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}

	switch typ {
	case "num":
		class, err := str("class")
		if err != nil {
			return nil, err
		}
		value, err := str("value")
		if err != nil {
			return nil, err
		}
		v, err := numeric.ParseLiteral(class, value)
		if err != nil {
			return nil, errors.Wrap(err, "exprjson")
		}
		return kernel.NewNum(v), nil

	case "symbol":
		name, err := str("name")
		if err != nil {
			return nil, err
		}
		return kernel.NewSymbol(name), nil

	case "sum":
		terms, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.AddOf(terms...), nil

	case "product":
		factors, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.MulOf(factors...), nil

	case "power":
		baseM, err := obj("base")
		if err != nil {
			return nil, err
		}
		expM, err := obj("exp")
		if err != nil {
			return nil, err
		}
		base, err := FromMap(baseM)
		if err != nil {
			return nil, err
		}
		exp, err := FromMap(expM)
		if err != nil {
			return nil, err
		}
		return kernel.PowOf(base, exp), nil

	case "function":
		name, err := str("name")
		if err != nil {
			return nil, err
		}
		fnArgs, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.FuncOf(name, fnArgs...), nil

	case "list":
		items, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.ListOf(items...), nil

	case "tuple":
		items, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.TupleOf(items...), nil

	case "constant":
		name, err := str("name")
		if err != nil {
			return nil, err
		}
		c, ok := kernel.LookupConstant(name)
		if !ok {
			return nil, errors.Errorf("constant: unregistered name %q", name)
		}
		return c, nil

	case "ncproduct":
		factors, err := args()
		if err != nil {
			return nil, err
		}
		return kernel.NCMulOf(factors...), nil

	case "relational":
		opStr, err := str("op")
		if err != nil {
			return nil, err
		}
		op, ok := kernel.ParseRelOp(opStr)
		if !ok {
			return nil, errors.Errorf("relational: unknown operator %q", opStr)
		}
		lhsM, err := obj("lhs")
		if err != nil {
			return nil, err
		}
		rhsM, err := obj("rhs")
		if err != nil {
			return nil, err
		}
		lhs, err := FromMap(lhsM)
		if err != nil {
			return nil, err
		}
		rhs, err := FromMap(rhsM)
		if err != nil {
			return nil, err
		}
		return kernel.RelOf(lhs, rhs, op), nil

	case "matrix":
		rowsAny, ok := data["rows"]
		if !ok {
			return nil, errors.New("matrix: missing \"rows\"")
		}
		colsAny, ok := data["cols"]
		if !ok {
			return nil, errors.New("matrix: missing \"cols\"")
		}
		rowsF, ok := rowsAny.(float64)
		if !ok {
			return nil, errors.New("matrix: \"rows\" must be a number")
		}
		colsF, ok := colsAny.(float64)
		if !ok {
			return nil, errors.New("matrix: \"cols\" must be a number")
		}
		rows, cols := int(rowsF), int(colsF)
		dataAny, ok := data["data"]
		if !ok {
			return nil, errors.New("matrix: missing \"data\"")
		}
		rawRows, ok := dataAny.([]interface{})
		if !ok || len(rawRows) != rows {
			return nil, errors.New("matrix: \"data\" must be an array of rows rows")
		}
		items := make([]kernel.Expr, rows*cols)
		for i, rawRow := range rawRows {
			row, ok := rawRow.([]interface{})
			if !ok || len(row) != cols {
				return nil, errors.Errorf("matrix: row %d must have %d entries", i, cols)
			}
			for j, cell := range row {
				m, ok := cell.(map[string]interface{})
				if !ok {
					return nil, errors.Errorf("matrix: entry [%d][%d] must be an object", i, j)
				}
				e, err := FromMap(m)
				if err != nil {
					return nil, err
				}
				items[i*cols+j] = e
			}
		}
		return kernel.MatrixOf(rows, cols, items), nil

	case "derivative":
		fnM, err := obj("fn")
		if err != nil {
			return nil, err
		}
		wrtM, err := obj("wrt")
		if err != nil {
			return nil, err
		}
		fn, err := FromMap(fnM)
		if err != nil {
			return nil, err
		}
		wrt, err := FromMap(wrtM)
		if err != nil {
			return nil, err
		}
		return kernel.NewDerivativeOf(fn, wrt), nil

	case "series":
		varM, err := obj("variable")
		if err != nil {
			return nil, err
		}
		pointM, err := obj("point")
		if err != nil {
			return nil, err
		}
		orderAny, ok := data["order"]
		if !ok {
			return nil, errors.New("series: missing \"order\"")
		}
		orderF, ok := orderAny.(float64)
		if !ok {
			return nil, errors.New("series: \"order\" must be a number")
		}
		coeffsAny, ok := data["coeffs"]
		if !ok {
			return nil, errors.New("series: missing \"coeffs\"")
		}
		rawCoeffs, ok := coeffsAny.([]interface{})
		if !ok {
			return nil, errors.New("series: \"coeffs\" must be an array")
		}
		coeffs := make([]kernel.Expr, len(rawCoeffs))
		for i, c := range rawCoeffs {
			m, ok := c.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("series: coeffs[%d] must be an object", i)
			}
			coeffs[i], err = FromMap(m)
			if err != nil {
				return nil, err
			}
		}
		variable, err := FromMap(varM)
		if err != nil {
			return nil, err
		}
		point, err := FromMap(pointM)
		if err != nil {
			return nil, err
		}
		return kernel.SeriesOf(variable, point, coeffs, int(orderF)), nil
	}
	return nil, errors.Errorf("exprjson: unknown type %q", typ)
}

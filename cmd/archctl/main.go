// cmd/archctl — inspect, encode, decode, and round-trip-check GARC archive
// files (spec.md §4.5/§6). A thin collaborator CLI over the archive and
// exprjson packages, built with cobra like every other CLI in the retrieved
// pack's style.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/loveq369/symkernel/archive"
	"github.com/loveq369/symkernel/exprjson"
	"github.com/loveq369/symkernel/kernel"
)

var rootCmd = &cobra.Command{
	Use:   "archctl",
	Short: "inspect and manipulate symkernel .garc archive files",
}

var encodeCmd = &cobra.Command{
	Use:   "encode <expr.json> <out.garc>",
	Short: "encode an exprjson document into a GARC archive",
	Args:  cobra.ExactArgs(2),
	RunE:  runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <in.garc> <out.json>",
	Short: "decode a GARC archive into an exprjson document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDecode,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <in.garc>",
	Short: "print the rendered text and LaTeX form of an archive's root expression",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var checkCmd = &cobra.Command{
	Use:   "check <in.garc>",
	Short: "round-trip an archive (decode, re-encode) and confirm the result matches structurally",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(encodeCmd, decodeCmd, inspectCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "archctl encode")
	}
	e, err := exprjson.Unmarshal(data)
	if err != nil {
		return errors.Wrap(err, "archctl encode: parse exprjson")
	}
	out, err := os.Create(args[1])
	if err != nil {
		return errors.Wrap(err, "archctl encode")
	}
	defer out.Close()
	if err := archive.Write(out, e); err != nil {
		return errors.Wrap(err, "archctl encode: write archive")
	}
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	e, err := readArchive(args[0])
	if err != nil {
		return err
	}
	data, err := exprjson.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "archctl decode: render exprjson")
	}
	return os.WriteFile(args[1], data, 0644)
}

func runInspect(cmd *cobra.Command, args []string) error {
	e, err := readArchive(args[0])
	if err != nil {
		return err
	}
	fmt.Println("kind: ", e.Kind())
	fmt.Println("text: ", e.String())
	fmt.Println("latex:", e.LaTeX())
	node := exprjson.ToMap(e)
	pretty, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return errors.Wrap(err, "archctl inspect: render node")
	}
	fmt.Println("node:")
	fmt.Println(string(pretty))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := readArchive(args[0])
	if err != nil {
		return err
	}
	f, err := os.CreateTemp("", "archctl-check-*.garc")
	if err != nil {
		return errors.Wrap(err, "archctl check")
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := archive.Write(f, e); err != nil {
		return errors.Wrap(err, "archctl check: re-encode")
	}
	if _, err := f.Seek(0, 0); err != nil {
		return errors.Wrap(err, "archctl check")
	}
	roundTripped, err := archive.Read(f)
	if err != nil {
		return errors.Wrap(err, "archctl check: re-decode")
	}
	if !e.Equal(roundTripped) {
		return errors.Errorf("archctl check: round trip mismatch:\n  original:     %s\n  round-tripped: %s", e.String(), roundTripped.String())
	}
	fmt.Println("round trip OK:", e.String())
	return nil
}

func readArchive(path string) (kernel.Expr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "archctl")
	}
	defer f.Close()
	e, err := archive.Read(f)
	if err != nil {
		return nil, errors.Wrap(err, "archctl: decode archive")
	}
	return e, nil
}

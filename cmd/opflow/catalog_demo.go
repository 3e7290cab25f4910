package main

import (
	_ "embed"

	"github.com/protocolbuffers/txtpbfmt/parser"
	"golang.org/x/xerrors"

	"github.com/opflow/opflow/internal/catalog"
	"github.com/opflow/opflow/internal/emit"
)

//go:embed data/jsonconf.py
var jsonConfPy []byte

//go:embed data/template.textpb
var templateTextpb []byte

// buildCatalog assembles opflow's demo catalog: a small C-like native
// toolchain (compile, assemble, link, disassemble) plus a config-conversion
// leg (json-to-textproto) that exercises the formatting setup independently
// of the toolchain states.
func buildCatalog() *catalog.Catalog {
	b := catalog.NewBuilder()

	csrc := b.AddState("csrc", []string{"c"})
	obj := b.AddState("obj", []string{"o"})
	bin := b.AddState("bin", []string{"bin"})
	asm := b.AddState("asm", []string{"s"})
	cfgjson := b.AddState("cfgjson", []string{"json"})
	cfgtext := b.AddState("cfgtext", []string{"textpb"})

	ccSetup := b.AddSetup("cc toolchain", func(e *emit.Emitter) error {
		if err := e.ConfigVarOr("cc", "cc.exe", "cc"); err != nil {
			return err
		}
		if err := e.ConfigVarOr("ld", "cc.ld", "ld"); err != nil {
			return err
		}
		if err := e.ConfigVarOr("objdump", "cc.objdump", "objdump"); err != nil {
			return err
		}
		if err := e.Rule("cc", "$cc -c $in -o $out"); err != nil {
			return err
		}
		if err := e.Rule("as", "$cc -c $in -o $out"); err != nil {
			return err
		}
		if err := e.Rule("ld", "$ld $in -o $out"); err != nil {
			return err
		}
		return e.Rule("objdump", "$objdump -d $in > $out")
	})

	textprotoSetup := b.AddSetup("textproto tools", func(e *emit.Emitter) error {
		formatted, err := parser.Format(templateTextpb)
		if err != nil {
			return xerrors.Errorf("formatting embedded template: %w", err)
		}
		if err := e.AddFile("template.textpb", formatted); err != nil {
			return xerrors.Errorf("writing template.textpb: %w", err)
		}
		if err := e.AddFile("jsonconf.py", jsonConfPy); err != nil {
			return xerrors.Errorf("writing jsonconf.py: %w", err)
		}
		return e.Rule("json-to-textpb", "python3 jsonconf.py $in $out")
	})

	b.AddRule([]catalog.SetupRef{ccSetup}, csrc, obj, "cc")
	b.AddRule([]catalog.SetupRef{ccSetup}, asm, obj, "as")
	b.AddRule([]catalog.SetupRef{ccSetup}, obj, bin, "ld")
	b.AddRule([]catalog.SetupRef{ccSetup}, obj, asm, "objdump")
	b.AddOperation("json-to-textproto", []catalog.SetupRef{textprotoSetup}, cfgjson, cfgtext,
		func(e *emit.Emitter, input, output string) error {
			return e.Build("json-to-textpb", input, output)
		})

	return b.Freeze()
}

package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// emitEnums lowers every registered enum in declaration order (spec.md
// §4.4.3): a simple enum (no variant carries fields) becomes a plain C
// enum typedef; a tagged enum becomes a `_Tag` enum plus a struct with an
// anonymous union of per-variant payload structs.
func emitEnums(w *strings.Builder, ctx *Context) {
	for _, name := range ctx.enumOrder {
		e := ctx.enums[name]
		if e.IsTagged() {
			emitTaggedEnum(w, e)
		} else {
			emitSimpleEnum(w, e)
		}
		w.WriteByte('\n')
	}
}

func emitSimpleEnum(w *strings.Builder, e *ast.EnumDecl) {
	w.WriteString("typedef enum {\n")
	for _, v := range e.Variants {
		fmt.Fprintf(w, "    %s_%s,\n", e.Name, v.Name)
	}
	fmt.Fprintf(w, "} %s;\n", e.Name)
}

func emitTaggedEnum(w *strings.Builder, e *ast.EnumDecl) {
	w.WriteString("typedef enum {\n")
	for _, v := range e.Variants {
		fmt.Fprintf(w, "    %s_%s,\n", e.Name, v.Name)
	}
	fmt.Fprintf(w, "} %s_Tag;\n\n", e.Name)

	fmt.Fprintf(w, "typedef struct {\n    %s_Tag tag;\n    union {\n", e.Name)
	for _, v := range e.Variants {
		if !v.HasFields() {
			continue
		}
		fmt.Fprintf(w, "        struct {\n")
		for _, f := range v.Fields {
			fmt.Fprintf(w, "            %s %s;\n", types.Parse(f.Type).CType(), f.Name)
		}
		fmt.Fprintf(w, "        } %s;\n", v.Name)
	}
	w.WriteString("    };\n")
	fmt.Fprintf(w, "} %s;\n", e.Name)
}

// emitEnumInit renders `Name::Variant(args...)` as the designated-
// initializer compound literal of spec.md §4.4.3/§4.4.5.
func emitEnumInit(ctx *Context, n *ast.EnumInit) string {
	e, ok := ctx.enums[n.EnumName]
	if !ok || !e.IsTagged() {
		return fmt.Sprintf("%s_%s", n.EnumName, n.Variant)
	}
	variant := findVariant(e, n.Variant)
	if variant == nil || !variant.HasFields() {
		return fmt.Sprintf("(%s){ .tag = %s_%s }", n.EnumName, n.EnumName, n.Variant)
	}
	var fields strings.Builder
	for i, f := range variant.Fields {
		if i > 0 {
			fields.WriteString(", ")
		}
		arg := ""
		if i < len(n.Args) {
			arg = emitExpr(ctx, n.Args[i])
		}
		fmt.Fprintf(&fields, ".%s = %s", f.Name, arg)
	}
	return fmt.Sprintf("(%s){ .tag = %s_%s, .%s = { %s } }", n.EnumName, n.EnumName, n.Variant, n.Variant, fields.String())
}

func findVariant(e *ast.EnumDecl, name string) *ast.Variant {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i]
		}
	}
	return nil
}

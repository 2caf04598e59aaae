package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/types"
)

// emitContainers lowers every registered instantiation, in first-seen
// order, into the template shapes of spec.md §4.4.4.
func emitContainers(w *strings.Builder, ctx *Context) {
	for _, key := range ctx.instOrder {
		t := ctx.instSet[key]
		switch t.Kind {
		case types.List:
			emitListTemplate(w, ctx, t)
		case types.MapT:
			emitMapTemplate(w, ctx, t)
		case types.ResultT:
			emitResultTemplate(w, ctx, t)
		case types.FutureT:
			emitFutureTemplate(w, ctx, t)
		}
		w.WriteByte('\n')
	}
}

func emitListTemplate(w *strings.Builder, ctx *Context, t *types.Type) {
	name := t.Mangle()
	elem := t.Elem.CType()
	arc := ctx.Flags.ARC

	w.WriteString("typedef struct {\n")
	if arc {
		w.WriteString("    int _rc;\n")
	}
	fmt.Fprintf(w, "    %s *data;\n    int len;\n    int cap;\n} %s;\n\n", elem, name)

	if arc {
		fmt.Fprintf(w, "%s *%s_make(%s *init, int n) {\n", name, name, elem)
		w.WriteString("    int cap = n > 8 ? n : 8;\n")
		fmt.Fprintf(w, "    %s *v = malloc(sizeof(%s));\n", name, name)
		w.WriteString("    v->_rc = 1;\n")
		fmt.Fprintf(w, "    v->data = malloc(sizeof(%s) * cap);\n", elem)
		fmt.Fprintf(w, "    memcpy(v->data, init, sizeof(%s) * n);\n", elem)
		w.WriteString("    v->len = n;\n    v->cap = cap;\n    return v;\n}\n\n")
	} else {
		fmt.Fprintf(w, "%s %s_make(%s *init, int n) {\n", name, name, elem)
		w.WriteString("    int cap = n > 8 ? n : 8;\n")
		fmt.Fprintf(w, "    %s *data = malloc(sizeof(%s) * cap);\n", elem, elem)
		fmt.Fprintf(w, "    memcpy(data, init, sizeof(%s) * n);\n", elem)
		fmt.Fprintf(w, "    %s v = { data, n, cap };\n    return v;\n}\n\n", name)
	}

	fmt.Fprintf(w, "void %s_push(%s *v, %s item) {\n", name, name, elem)
	w.WriteString("    if (v->len >= v->cap) {\n")
	w.WriteString("        int newcap = v->cap < 8 ? 8 : v->cap * 2;\n")
	fmt.Fprintf(w, "        v->data = realloc(v->data, sizeof(%s) * newcap);\n", elem)
	w.WriteString("        v->cap = newcap;\n    }\n")
	w.WriteString("    v->data[v->len++] = item;\n}\n")

	if arc {
		fmt.Fprintf(w, "\n%s *%s_retain(%s *v) {\n    if (v) v->_rc++;\n    return v;\n}\n\n", name, name, name)
		fmt.Fprintf(w, "void %s_release(%s *v) {\n    if (!v) return;\n    if (--v->_rc == 0) {\n        free(v->data);\n        free(v);\n    }\n}\n", name, name)
	}
}

func emitMapTemplate(w *strings.Builder, ctx *Context, t *types.Type) {
	name := t.Mangle()
	key := t.Key.CType()
	val := t.Val.CType()
	arc := ctx.Flags.ARC
	entry := name + "_entry"

	fmt.Fprintf(w, "typedef struct {\n    %s key;\n    %s val;\n} %s;\n\n", key, val, entry)

	w.WriteString("typedef struct {\n")
	if arc {
		w.WriteString("    int _rc;\n")
	}
	fmt.Fprintf(w, "    %s *entries;\n    int len;\n    int cap;\n} %s;\n\n", entry, name)

	if arc {
		fmt.Fprintf(w, "%s *%s_make(void) {\n", name, name)
		fmt.Fprintf(w, "    %s *m = malloc(sizeof(%s));\n", name, name)
		w.WriteString("    m->_rc = 1;\n    m->cap = 8;\n    m->len = 0;\n")
		fmt.Fprintf(w, "    m->entries = malloc(sizeof(%s) * m->cap);\n    return m;\n}\n\n", entry)
	} else {
		fmt.Fprintf(w, "%s %s_make(void) {\n", name, name)
		fmt.Fprintf(w, "    %s m;\n    m.cap = 8;\n    m.len = 0;\n", name)
		fmt.Fprintf(w, "    m.entries = malloc(sizeof(%s) * m.cap);\n    return m;\n}\n\n", entry)
	}

	eq := func(i string) string {
		if t.Key.Canonical() == "string" {
			return fmt.Sprintf("strcmp(m->entries[%s].key, key) == 0", i)
		}
		return fmt.Sprintf("m->entries[%s].key == key", i)
	}

	fmt.Fprintf(w, "void %s_set(%s *m, %s key, %s val) {\n", name, name, key, val)
	w.WriteString("    for (int i = 0; i < m->len; i++) {\n")
	fmt.Fprintf(w, "        if (%s) { m->entries[i].val = val; return; }\n    }\n", eq("i"))
	w.WriteString("    if (m->len >= m->cap) {\n        m->cap *= 2;\n")
	fmt.Fprintf(w, "        m->entries = realloc(m->entries, sizeof(%s) * m->cap);\n    }\n", entry)
	w.WriteString("    m->entries[m->len].key = key;\n    m->entries[m->len].val = val;\n    m->len++;\n}\n\n")

	fmt.Fprintf(w, "%s %s_get(%s *m, %s key) {\n", val, name, name, key)
	w.WriteString("    for (int i = 0; i < m->len; i++) {\n")
	fmt.Fprintf(w, "        if (%s) return m->entries[i].val;\n    }\n", eq("i"))
	fmt.Fprintf(w, "    %s zero = {0};\n    return zero;\n}\n\n", val)

	fmt.Fprintf(w, "bool %s_has(%s *m, %s key) {\n", name, name, key)
	w.WriteString("    for (int i = 0; i < m->len; i++) {\n")
	fmt.Fprintf(w, "        if (%s) return true;\n    }\n    return false;\n}\n", eq("i"))

	if arc {
		fmt.Fprintf(w, "\n%s *%s_retain(%s *m) {\n    if (m) m->_rc++;\n    return m;\n}\n\n", name, name, name)
		fmt.Fprintf(w, "void %s_release(%s *m) {\n    if (!m) return;\n    if (--m->_rc == 0) {\n        free(m->entries);\n        free(m);\n    }\n}\n", name, name)
	}
}

// emitResultTemplate lowers Result<T> per spec.md §4.4.4: the ok payload
// is typed T, or T* when T is an ARC container; a cleanup helper is only
// emitted in that ARC case.
func emitResultTemplate(w *strings.Builder, ctx *Context, t *types.Type) {
	name := t.Mangle()
	ok := t.Ok
	okType := ctx.declType(ok)

	fmt.Fprintf(w, "typedef enum { %s_Ok, %s_Err } %s_Tag;\n\n", name, name, name)
	fmt.Fprintf(w, "typedef struct {\n    %s_Tag tag;\n    union {\n        %s ok;\n        const char *err;\n    };\n} %s;\n", name, okType, name)

	if ctx.Flags.ARC && ok.IsARCEligible() {
		fmt.Fprintf(w, "\nvoid %s_cleanup(%s *r) {\n    if (r->tag == %s_Ok) {\n        %s_release(r->ok);\n    }\n}\n", name, name, name, ok.Mangle())
	}
}

func emitFutureTemplate(w *strings.Builder, ctx *Context, t *types.Type) {
	name := t.Mangle()
	result := "int"
	if t.Elem.Canonical() != "void" {
		result = t.Elem.CType()
	}
	fmt.Fprintf(w, "typedef struct {\n    pthread_t thread;\n    %s result;\n    int started;\n} %s;\n", result, name)
}

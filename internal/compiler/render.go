package compiler

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf16"
)

const header = "// Code generated by dagger-auto. DO NOT EDIT.\n\npackage {{.Package}};\n"

const moduleTemplate = header + `
@dagger.Module
public interface {{.Name}} {
{{range .Rules}}
	@dagger.Binds
{{- if .IntoSet}}
	@dagger.multibindings.IntoSet
{{- else if .IntoStringMap}}
	@dagger.multibindings.IntoMap
	@dagger.multibindings.StringKey({{quote .Key}})
{{- else if .IntoClassMap}}
	@dagger.multibindings.IntoMap
	@dagger.multibindings.ClassKey({{.Key}}.class)
{{- end}}
	{{.Interface}} {{.Method}}({{.Implementation}} {{.Instance}});
{{end}}
{{- range .Aggregators}}
	@dagger.multibindings.Multibinds
	{{.Collection}} {{.Method}}();
{{end}}
{{- range .Bridges}}
	@javax.inject.Singleton
	@dagger.Provides
	@dagger.multibindings.ElementsIntoSet
	static {{.Collection}} {{.Method}}(ExternalMultiBindings externalMultiBindings) {
		return externalMultiBindings.{{.Accessor}}(){{if .Unwrap}}.get(){{end}};
	}
{{end}}
{{- if .Encapsulated}}
	interface ExternalMultiBindings {
{{- range .External}}
		{{.Type}} {{.Name}}();
{{- end}}
	}
{{end}}
}
`

const componentTemplate = header + `
@javax.inject.Singleton
@dagger.Component(modules = {{"{"}}{{.Module}}.class})
public interface {{.Name}} {
{{range .Accessors}}
	{{.Type}} {{.Name}}();
{{end}}
	@dagger.Component.Builder
	interface Builder {
{{range .Instances}}
		@dagger.BindsInstance
		Builder {{.Name}}({{.Type}} {{.Name}});
{{end}}
		@dagger.BindsInstance
		Builder externalMultiBindings({{.External}} externalMultiBindings);

		{{.Name}} build();
	}
}
`

const wrapperTemplate = header + `
@dagger.Module
public interface {{.Name}} {

	@javax.inject.Singleton
	@dagger.Provides
	static {{.Component}} create({{params .Params}}) {
		return {{.Builder}}.builder()
{{- range .Instances}}
			.{{.Name}}({{.Name}})
{{- end}}
			.externalMultiBindings(new {{.External}}() {
{{- range .ExternalMembers}}
				public {{.Type}} {{.Name}}() {
					return {{.Name}};
				}
{{- end}}
			})
			.build();
	}
{{range .Provisions}}
	@javax.inject.Singleton
	@dagger.Provides
{{- if .ElementsIntoSet}}
	@dagger.multibindings.ElementsIntoSet
{{- end}}
	static {{.Type}} {{.Method}}({{$.Component}} component) {
		return component.{{.Method}}();
	}
{{end}}
{{- range .Aggregators}}
	@dagger.multibindings.Multibinds
	{{.Collection}} {{.Method}}();
{{end}}
}
`

var funcs = template.FuncMap{
	"quote":  javaQuote,
	"params": params,
}

var (
	moduleTmpl    = template.Must(template.New("module").Funcs(funcs).Parse(moduleTemplate))
	componentTmpl = template.Must(template.New("component").Funcs(funcs).Parse(componentTemplate))
	wrapperTmpl   = template.Must(template.New("wrapper").Funcs(funcs).Parse(wrapperTemplate))
)

// javaQuote renders s as a Java string literal. Characters outside printable
// ASCII become \uXXXX escapes, supplementary runes as surrogate pairs. Line
// terminators, the quote and the backslash use their short escapes, since a
// unicode escape of them would end or break the literal.
func javaQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\f':
			sb.WriteString(`\f`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r >= 0x20 && r < 0x7f {
				sb.WriteRune(r)
				continue
			}
			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(&sb, `\u%04x`, u)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func params(ms []member) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.Type + " " + m.Name
	}
	return strings.Join(parts, ", ")
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

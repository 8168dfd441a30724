package cli

import "text/template"

const accountTemplate = `ID:       {{.ID}}
Type:     {{.Type}}
Login:    {{if .Login}}{{.Login}}{{else}}(no login){{end}}
Password: {{.Password}}
Labels:   {{.Labels}}
`

const statusTemplate = `=== Storage Status ===

Backend:    {{.Backend}}
{{- if .Path }}
Path:       {{.Path}}
{{- end}}
Key:        {{.Key}}
Encryption: {{if .Sealed}}enabled{{else}}disabled{{end}}

Accounts:   {{.Total}} ({{.Local}} LOCAL, {{.Directory}} LDAP)
{{- if .Invalid }}
Invalid:    {{len .Invalid}}
{{- range .Invalid }}
  - {{.}}
{{- end}}
{{- end}}
`

var (
	accountTmpl = template.Must(template.New("account").Parse(accountTemplate))
	statusTmpl  = template.Must(template.New("status").Parse(statusTemplate))
)

type accountView struct {
	ID       string
	Type     string
	Login    string
	Password string
	Labels   string
}

type statusView struct {
	Backend   string
	Path      string
	Key       string
	Invalid   []string
	Total     int
	Local     int
	Directory int
	Sealed    bool
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type handoverBriefEmailData struct {
	baseEmailData
	HandoverBriefData
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// renderHandoverBriefText builds the plain-text alternative for clients that
// don't render HTML.
func renderHandoverBriefText(data HandoverBriefData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New sales handover: %s\n\n", briefSubjectLead(data))
	fmt.Fprintf(&b, "Lead: %s <%s>\n", data.LeadName, data.LeadEmail)
	if data.VehicleInfo != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", data.VehicleInfo)
	}
	fmt.Fprintf(&b, "Urgency: %s\n", data.UrgencyLevel)
	fmt.Fprintf(&b, "Reason: %s\n\n", data.HandoverReason)

	if data.Summary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", data.Summary)
	}
	if len(data.QuickInsights) > 0 {
		b.WriteString("Quick insights:\n")
		for _, item := range data.QuickInsights {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if len(data.Actions) > 0 {
		b.WriteString("Next actions:\n")
		for _, item := range data.Actions {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if data.RepMessage != "" {
		fmt.Fprintf(&b, "Suggested reply (copy-paste ready):\n%s\n\n", data.RepMessage)
	}
	if len(data.ResearchQueries) > 0 {
		b.WriteString("Inventory lookups:\n")
		for _, item := range data.ResearchQueries {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func briefSubjectLead(data HandoverBriefData) string {
	if data.LeadName != "" {
		return data.LeadName
	}
	return data.LeadEmail
}

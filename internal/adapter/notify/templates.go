package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"loan-backoffice/internal/domain/notification"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[notification.Kind]emailTemplate{
	notification.KindApplicationSubmitted: {
		subject: "Your loan application is under review",
		body: template.Must(template.New("submitted").Parse(
			"Hello {{.full_name}},\n\nAll required documents for application {{.application_id}} are in. " +
				"An underwriter is now reviewing it.\n")),
	},
	notification.KindStatusChanged: {
		subject: "Your loan application status changed",
		body: template.Must(template.New("status").Parse(
			"Hello {{.full_name}},\n\nApplication {{.application_id}} is now {{.status}}.\n" +
				"{{with .comment}}\nNote: {{.}}\n{{end}}")),
	},
	notification.KindDocumentsRequested: {
		subject: "Additional documents needed for your loan application",
		body: template.Must(template.New("docs").Parse(
			"Hello {{.full_name}},\n\nPlease upload the following for application {{.application_id}}:\n{{.documents}}\n")),
	},
	notification.KindRestorationRequested: {
		subject: "Restoration request awaiting review",
		body: template.Must(template.New("restoration_requested").Parse(
			"Restoration request {{.request_id}} for application {{.application_id}} was filed by {{.requested_by}}.\n\n" +
				"Reason: {{.reason}}\n")),
	},
	notification.KindRestorationApproved: {
		subject: "Restoration request approved",
		body: template.Must(template.New("restoration_approved").Parse(
			"Restoration request {{.request_id}} for application {{.application_id}} was approved.\n" +
				"{{with .notes}}\nNotes: {{.}}\n{{end}}")),
	},
	notification.KindRestorationRejected: {
		subject: "Restoration request rejected",
		body: template.Must(template.New("restoration_rejected").Parse(
			"Restoration request {{.request_id}} for application {{.application_id}} was rejected.\n\nNotes: {{.notes}}\n")),
	},
}

// Render produces the subject and plain-text body for a message.
func Render(m notification.Message) (string, string, error) {
	tpl, ok := templates[m.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", m.Kind)
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, m.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", m.Kind, err)
	}
	return tpl.subject, buf.String(), nil
}

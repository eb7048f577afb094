package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-service-layer/pkg/mailer"
	mailtpl "github.com/oksasatya/go-service-layer/pkg/mailer/templates"
)

// SubjectFor returns the subject line for a template when the job has none.
func SubjectFor(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.Welcome:
		return "Welcome to our platform!"
	case mailtpl.Deactivation:
		return "Account Deactivated"
	default:
		return "Notification"
	}
}

// EnsureRecipientAndEmail fills template fields the producer may have left out.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if _, ok := job.Data["Name"]; !ok {
		job.Data["Name"] = ""
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
}

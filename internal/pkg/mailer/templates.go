package mailer

import (
	"bytes"
	"html/template"
	"strings"
	texttemplate "text/template"
)

const layoutHTML = `<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222;max-width:560px;margin:auto">
<h2 style="color:#7c3aed">Evea</h2>
{{template "content" .}}
<p style="color:#888;font-size:12px">You are receiving this email because of activity on your Evea account.</p>
</body></html>`

type templatePair struct {
	subject string
	html    *template.Template
	text    *texttemplate.Template
}

func newPair(subject, html, text string) templatePair {
	h := template.Must(template.New("layout").Parse(layoutHTML))
	template.Must(h.New("content").Parse(html))
	return templatePair{
		subject: subject,
		html:    h,
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
	}
}

var (
	verificationTpl = newPair("Verify your email address",
		`<p>Hi {{.Name}},</p><p>Please confirm your email address to continue.</p>
<p><a href="{{.Link}}" style="background:#7c3aed;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Verify email</a></p>
<p>This link expires in {{.ExpiresIn}}.</p>`,
		"Hi {{.Name}},\n\nPlease confirm your email address: {{.Link}}\n\nThis link expires in {{.ExpiresIn}}.\n")

	welcomeTpl = newPair("Welcome to Evea",
		`<p>Hi {{.Name}},</p><p>Your email is verified.{{if .IsVendor}} Continue your vendor registration to get listed on Evea.{{end}}</p>`,
		"Hi {{.Name}},\n\nYour email is verified.{{if .IsVendor}} Continue your vendor registration to get listed on Evea.{{end}}\n")

	credentialsTpl = newPair("Your Evea vendor account is approved",
		`<p>Hi {{.Name}},</p><p>Congratulations! <strong>{{.BusinessName}}</strong> has been approved.</p>
<p>Sign in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> with:</p>
<p>Email: <strong>{{.Email}}</strong><br>Temporary password: <strong>{{.Password}}</strong></p>
<p>Please change your password after your first login.</p>`,
		"Hi {{.Name}},\n\n{{.BusinessName}} has been approved.\n\nSign in at {{.LoginURL}}\nEmail: {{.Email}}\nTemporary password: {{.Password}}\n\nPlease change your password after your first login.\n")

	rejectionTpl = newPair("Update on your Evea vendor application",
		`<p>Hi {{.Name}},</p><p>We could not approve <strong>{{.BusinessName}}</strong> at this time.</p>
<p>Reason: {{.Reason}}</p><p>Reply to this email if you have questions.</p>`,
		"Hi {{.Name}},\n\nWe could not approve {{.BusinessName}} at this time.\n\nReason: {{.Reason}}\n")

	statusTpl = newPair("{{.Subject}}",
		`<p>Hi {{.Name}},</p><p>{{.Body}}</p>`,
		"Hi {{.Name}},\n\n{{.Body}}\n")
)

func render(p templatePair, to, toName string, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := p.html.ExecuteTemplate(&html, "layout", data); err != nil {
		return Message{}, err
	}
	if err := p.text.Execute(&text, data); err != nil {
		return Message{}, err
	}

	subject := p.subject
	if strings.Contains(subject, "{{") {
		var sb bytes.Buffer
		if err := texttemplate.Must(texttemplate.New("subject").Parse(subject)).Execute(&sb, data); err != nil {
			return Message{}, err
		}
		subject = sb.String()
	}

	return Message{To: to, ToName: toName, Subject: subject, HTML: html.String(), Text: text.String()}, nil
}

func VerificationEmail(to, name, link, expiresIn string) (Message, error) {
	return render(verificationTpl, to, name, map[string]any{"Name": name, "Link": link, "ExpiresIn": expiresIn})
}

func WelcomeEmail(to, name string, isVendor bool) (Message, error) {
	return render(welcomeTpl, to, name, map[string]any{"Name": name, "IsVendor": isVendor})
}

func CredentialsEmail(to, name, businessName, tempPassword, loginURL string) (Message, error) {
	return render(credentialsTpl, to, name, map[string]any{
		"Name": name, "BusinessName": businessName, "Email": to, "Password": tempPassword, "LoginURL": loginURL,
	})
}

func RejectionEmail(to, name, businessName, reason string) (Message, error) {
	return render(rejectionTpl, to, name, map[string]any{"Name": name, "BusinessName": businessName, "Reason": reason})
}

func StatusEmail(to, name, subject, body string) (Message, error) {
	return render(statusTpl, to, name, map[string]any{"Name": name, "Subject": subject, "Body": body})
}

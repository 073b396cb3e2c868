package email

import (
	"bytes"
	"html/template"
)

const layoutOpen = `<html lang="en"><head><meta charset="UTF-8"></head><body>
<div style="font-family: Helvetica,Arial,sans-serif;overflow:auto;line-height:2">
<div style="margin:30px auto;width:90%;padding:20px 0">
<div style="border-bottom:1px solid #eee"></div>`

const layoutClose = `<hr style="border:none;border-top:1px solid #eee" />
</div></div></body></html>`

var (
	otpTemplate = template.Must(template.New("otp").Parse(layoutOpen + `
<p style="font-size:1.1em">Hi, {{.Name}}</p>
<p>Use the following OTP to login. OTP is valid for {{.Minutes}} minutes.</p>
<h2 style="background:#00466a;margin:0 auto;width:max-content;padding:0 10px;color:#fff;border-radius:4px;">{{.Code}}</h2>
<p style="font-size:0.9em;">Regards,<br />{{.Signature}}</p>
` + layoutClose))

	resetTemplate = template.Must(template.New("reset").Parse(layoutOpen + `
<p style="font-size:1.1em">Hi, {{.Name}}</p>
<p>We have received a password reset request. Please use the below link to reset your password.</p>
<p><a href="{{.URL}}" target="_blank">Reset Password</a></p>
<p>This reset password link will be valid only for {{.Minutes}} minutes.</p>
<p style="font-size:0.9em;">Regards,<br />{{.Signature}}</p>
` + layoutClose))

	noticeTemplate = template.Must(template.New("notice").Parse(layoutOpen + `
<p>Request Type: {{.RequestType}}</p>
<p>{{.Message}}</p>
<p style="font-size:0.9em;">Regards,<br />{{.Name}}<br />Email: {{.Email}}<br /></p>
` + layoutClose))
)

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

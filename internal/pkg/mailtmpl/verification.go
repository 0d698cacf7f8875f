package mailtmpl

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

// VerificationSubject is the subject line of the account verification email.
const VerificationSubject = "Verifikasi Akun MedSkill Anda"

// VerificationData fills the verification email.
type VerificationData struct {
	Link string
}

var verificationHTML = htmltpl.Must(htmltpl.New("verify_html").Parse(`<div style="font-family: sans-serif;">
  <h2>Selamat datang di MedSkill</h2>
  <p>Terima kasih telah mendaftar. Klik tombol di bawah ini untuk memverifikasi akun Anda:</p>
  <a href="{{.Link}}" style="background:#2563EB;color:white;padding:10px 20px;border-radius:8px;text-decoration:none;">Verifikasi Sekarang</a>
  <p>Jika Anda tidak mendaftar di MedSkill, abaikan email ini.</p>
</div>
`))

var verificationText = texttpl.Must(texttpl.New("verify_text").Parse(`Selamat datang di MedSkill

Terima kasih telah mendaftar. Buka tautan berikut untuk memverifikasi akun Anda:
{{.Link}}

Jika Anda tidak mendaftar di MedSkill, abaikan email ini.
`))

// Verification renders the plain-text and HTML bodies.
func Verification(d VerificationData) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := verificationText.Execute(&tb, d); err != nil {
		return "", "", fmt.Errorf("render verification text: %w", err)
	}
	if err := verificationHTML.Execute(&hb, d); err != nil {
		return "", "", fmt.Errorf("render verification html: %w", err)
	}
	return tb.String(), hb.String(), nil
}

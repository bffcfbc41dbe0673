package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/birthday.html
var birthdayHTML string

var birthdayTmpl = template.Must(template.New("birthday").Parse(birthdayHTML))

// Birthday renders the birthday greeting for the given recipient.
func Birthday(to, name string) (Email, error) {
	var buf bytes.Buffer
	err := birthdayTmpl.Execute(&buf, map[string]any{
		"Name": name,
		"Year": time.Now().Year(),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render birthday template: %w", err)
	}
	return Email{
		To:      to,
		Subject: "Happy Birthday!",
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Happy birthday, %s!", name),
	}, nil
}

package template

import "fmt"

// Component is one section of a Graph API template submission.
type Component struct {
	Type    string         `json:"type"` // "HEADER", "BODY", "FOOTER", "BUTTONS"
	Format  string         `json:"format,omitempty"`
	Text    string         `json:"text,omitempty"`
	Buttons []Button       `json:"buttons,omitempty"`
	Example map[string]any `json:"example,omitempty"`
}

// Payload is the composed submission sent to the template-approval service.
// AUTHENTICATION templates carry no components; WhatsApp generates those.
type Payload struct {
	Name       string        `json:"name"`
	Category   string        `json:"category"`
	Language   string        `json:"language"`
	Channel    string        `json:"channel"`
	Components []Component   `json:"components,omitempty"`
	Auth       *AuthSettings `json:"authSettings,omitempty"`
}

// Compose walks the draft through every remaining step and assembles the
// submission payload. Guard failures surface as the step errors.
func (d *Draft) Compose() (*Payload, error) {
	for d.Step != StepSubmitted {
		if err := d.Advance(); err != nil {
			return nil, fmt.Errorf("template.Compose: %w", err)
		}
	}

	p := &Payload{
		Name:     d.Name,
		Category: d.Category,
		Language: d.Language,
		Channel:  d.Channel,
	}

	if d.Category == CategoryAuthentication {
		p.Auth = d.Auth
		return p, nil
	}

	if d.HeaderFormat != HeaderNone {
		h := Component{Type: "HEADER", Format: d.HeaderFormat}
		if d.HeaderFormat == HeaderText {
			h.Text = d.HeaderText
		} else {
			h.Example = map[string]any{"header_handle": []string{d.HeaderHandle}}
		}
		p.Components = append(p.Components, h)
	}

	body := Component{Type: "BODY", Text: d.Body}
	if len(d.Variables) > 0 {
		body.Example = map[string]any{"body_text": [][]string{d.Variables}}
	}
	p.Components = append(p.Components, body)

	if d.Footer != "" {
		p.Components = append(p.Components, Component{Type: "FOOTER", Text: d.Footer})
	}

	if len(d.Buttons) > 0 {
		p.Components = append(p.Components, Component{Type: "BUTTONS", Buttons: d.Buttons})
	}

	return p, nil
}

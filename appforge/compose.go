package appforge

import "github.com/petal-labs/appforge/core"

// Compose builds the message list for in.
//
// A Show input becomes a single user message holding Instructions and the
// image as a data URL. A Tell input becomes a SystemPersona system message
// followed by the description as the user message.
func Compose(in Input) ([]core.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Mode == ModeShow {
		return []core.Message{{
			Role: core.RoleUser,
			Parts: []core.ContentPart{
				core.InputText{Text: Instructions},
				core.InputImage{ImageURL: in.Image.DataURL()},
			},
		}}, nil
	}

	return []core.Message{
		{Role: core.RoleSystem, Content: SystemPersona},
		{Role: core.RoleUser, Content: in.Text},
	}, nil
}

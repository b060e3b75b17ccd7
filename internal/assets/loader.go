package assets

import "fmt"

// AssetLoader reads the form's HTML template and its stylesheets by bare
// name: "form" resolves to templates/form.html or styles/form.css.
type AssetLoader interface {
	// LoadStyle returns a stylesheet, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns an HTML template, or ErrTemplateNotFound.
	LoadTemplate(name string) (string, error)
}

// Bundle is everything the conversion page needs: the form template, the
// form stylesheet and the stylesheet of the rendered preview.
type Bundle struct {
	FormTemplate string
	FormCSS      string
	PreviewCSS   string
}

// LoadBundle reads the three page assets from l. The first failure is
// returned with the name of the asset that caused it.
func LoadBundle(l AssetLoader) (Bundle, error) {
	var (
		b   Bundle
		err error
	)
	if b.FormTemplate, err = l.LoadTemplate(FormTemplate); err != nil {
		return Bundle{}, fmt.Errorf("form template: %w", err)
	}
	if b.FormCSS, err = l.LoadStyle(FormStyle); err != nil {
		return Bundle{}, fmt.Errorf("form stylesheet: %w", err)
	}
	if b.PreviewCSS, err = l.LoadStyle(PreviewStyle); err != nil {
		return Bundle{}, fmt.Errorf("preview stylesheet: %w", err)
	}
	return b, nil
}

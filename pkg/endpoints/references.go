package endpoints

import (
	"bytes"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/Masterminds/sprig/v3"
)

const (
	maxOperationIDLength       = 40
	maxMerchantReferenceLength = 50

	DefaultReferenceTemplate = `{{ .TestID }}:{{ randAlphaNum .Remaining }}`
)

// References renders operation ids and merchant references from sprig templates.
type References struct {
	operationID       *template.Template
	merchantReference *template.Template
}

// ReferenceData is the data a reference template is executed with.
type ReferenceData struct {
	TestID string
	// Remaining is the number of characters left after TestID and one separator.
	Remaining int
}

// NewReferences parses both templates. An empty template selects DefaultReferenceTemplate.
func NewReferences(operationID, merchantReference string) (*References, error) {
	op, err := parseReference("operationId", operationID)
	if err != nil {
		return nil, err
	}
	ref, err := parseReference("merchantReference", merchantReference)
	if err != nil {
		return nil, err
	}
	return &References{operationID: op, merchantReference: ref}, nil
}

func parseReference(name, text string) (*template.Template, error) {
	if text == "" {
		text = DefaultReferenceTemplate
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return tmpl, nil
}

// OperationID renders a fresh operation id of at most 40 characters.
func (r *References) OperationID(testID string) (string, error) {
	return render(r.operationID, testID, maxOperationIDLength)
}

// MerchantReference renders a fresh merchant reference of at most 50 characters.
func (r *References) MerchantReference(testID string) (string, error) {
	return render(r.merchantReference, testID, maxMerchantReferenceLength)
}

func render(tmpl *template.Template, testID string, limit int) (string, error) {
	data := ReferenceData{TestID: testID, Remaining: max(limit-utf8.RuneCountInString(testID)-1, 0)}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}

	// limits count characters; never cut inside one
	out := []rune(buf.String())
	if len(out) > limit {
		out = out[:limit]
	}
	return string(out), nil
}

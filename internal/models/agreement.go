package models

import "time"

// Agreement is the finalized output of a template: the value map it was
// rendered with and the resulting contract text.
type Agreement struct {
	ID              string            `json:"id"`
	TemplateID      string            `json:"templateId"`
	TemplateVersion int               `json:"templateVersion"`
	TenantID        string            `json:"tenantId"`
	Values          map[string]string `json:"values"`
	Text            string            `json:"text"`
	CreatedBy       string            `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
}

package credentials

import "context"

// Secret is what the summarization backend needs to authenticate.
// Exactly one of APIKey or ServiceAccountJSON is normally set; both empty
// means application default credentials.
type Secret struct {
	APIKey             string
	ServiceAccountJSON []byte
}

// Project identifies the cloud project and region summarization runs in.
type Project struct {
	ID     string
	Region string
}

// Provider supplies summarization credentials and project settings.
type Provider interface {
	SummarizationCredentials(ctx context.Context) (Secret, error)
	ProjectConfig(ctx context.Context) (Project, error)
}

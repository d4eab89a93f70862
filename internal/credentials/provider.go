package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/config"
)

var (
	ErrMissingAPIKey  = errors.New("gemini api key is required")
	ErrMissingProject = errors.New("google cloud project is required")
	ErrInvalidKeyFile = errors.New("invalid service account file")
)

type serviceAccount struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

func (p *implProvider) SummarizationCredentials(ctx context.Context) (Secret, error) {
	if err := ctx.Err(); err != nil {
		return Secret{}, err
	}

	if p.cfg.Backend != config.GeminiBackendVertex {
		key := strings.TrimSpace(p.cfg.APIKey)
		if key == "" {
			return Secret{}, ErrMissingAPIKey
		}
		return Secret{APIKey: key}, nil
	}

	if p.cfg.CredentialsFile == "" {
		return Secret{}, nil
	}
	raw, _, err := p.serviceAccount()
	if err != nil {
		return Secret{}, err
	}
	return Secret{ServiceAccountJSON: raw}, nil
}

func (p *implProvider) ProjectConfig(ctx context.Context) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}

	proj := Project{
		ID:     strings.TrimSpace(p.cfg.Project),
		Region: strings.TrimSpace(p.cfg.Location),
	}
	if p.cfg.Backend != config.GeminiBackendVertex {
		return proj, nil
	}

	if proj.ID == "" && p.cfg.CredentialsFile != "" {
		_, sa, err := p.serviceAccount()
		if err != nil {
			return Project{}, err
		}
		proj.ID = sa.ProjectID
	}
	if proj.ID == "" {
		return Project{}, ErrMissingProject
	}
	return proj, nil
}

func (p *implProvider) serviceAccount() ([]byte, serviceAccount, error) {
	raw, err := p.readFile(p.cfg.CredentialsFile)
	if err != nil {
		return nil, serviceAccount{}, fmt.Errorf("read credentials file: %w", err)
	}

	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, serviceAccount{}, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	if sa.Type == "" {
		return nil, serviceAccount{}, fmt.Errorf("%w: missing type", ErrInvalidKeyFile)
	}
	return raw, sa, nil
}

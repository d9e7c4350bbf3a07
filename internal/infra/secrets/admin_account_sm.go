// internal/infra/secrets/admin_account_sm.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var (
	ErrSecretNotConfigured = errors.New("secrets: not configured")
	ErrSecretEmpty         = errors.New("secrets: secret payload is empty")
)

// AccessSecretString reads the latest version of a secret as a trimmed string.
func AccessSecretString(ctx context.Context, projectID, secretID string) (string, error) {
	pid := strings.TrimSpace(projectID)
	sid := strings.TrimSpace(secretID)
	if pid == "" || sid == "" {
		return "", ErrSecretNotConfigured
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", pid, sid)
	res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("access secret version %s: %w", name, err)
	}
	if res == nil || res.Payload == nil {
		return "", ErrSecretEmpty
	}

	s := strings.TrimSpace(string(res.Payload.Data))
	if s == "" {
		return "", ErrSecretEmpty
	}
	return s, nil
}

// LoadAdminAccountID resolves the single designated administrative account id.
// Secret Manager に無ければ呼び出し側が環境変数フォールバックを使う想定。
func LoadAdminAccountID(ctx context.Context, projectID, secretID string) (string, error) {
	return AccessSecretString(ctx, projectID, secretID)
}

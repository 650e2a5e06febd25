//go:build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

func stopCatalogContainer(t *testing.T, ctx context.Context) {
	t.Helper()
	compose(t, ctx, "stop", "catalog")
}

func startCatalogContainer(t *testing.T, ctx context.Context) {
	t.Helper()
	compose(t, ctx, "start", "catalog")
}

func compose(t *testing.T, ctx context.Context, args ...string) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose %v failed: %v\n%s", args, err, string(out))
	}
}

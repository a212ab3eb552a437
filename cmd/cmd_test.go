package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	config "github.com/phillip/donation-hub-go/config"
	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

func useMemoryStore(t *testing.T) *store.Memory {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://unused")
	t.Setenv("JWT_SECRET", "secret")

	mem := store.NewMemory()
	prev := openStore
	openStore = func(context.Context, *config.Config) (store.Store, func(), error) {
		return mem, func() {}, nil
	}
	t.Cleanup(func() { openStore = prev })
	return mem
}

func TestStatsCommand(t *testing.T) {
	mem := useMemoryStore(t)
	ctx := context.Background()

	org := &models.Organization{Name: "Food Bank", CreatedAt: time.Now()}
	require.NoError(t, mem.InsertOrganization(ctx, org))
	require.NoError(t, mem.InsertDonation(ctx, &models.Donation{
		Amount: 40, TargetType: models.TargetOrganization, TargetID: org.ID.Hex(),
		Status: models.CashSucceeded, CreatedAt: time.Now(),
	}))
	require.NoError(t, mem.InsertDonation(ctx, &models.Donation{
		Amount: 99, TargetType: models.TargetOrganization, TargetID: org.ID.Hex(),
		Status: models.CashFailed, CreatedAt: time.Now(),
	}))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats", org.ID.Hex()})
	require.NoError(t, root.Execute())

	var stats models.OrganizationDonationStats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, org.ID.Hex(), stats.OrganizationID)
	assert.Equal(t, 1, stats.TotalCashDonations)
	assert.InDelta(t, 40, stats.TotalCashAmount, 1e-9)
}

func TestStatsCommandRejectsBadID(t *testing.T) {
	useMemoryStore(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "org-1"})
	assert.Error(t, root.Execute())
}

func TestRootRequiresConfig(t *testing.T) {
	useMemoryStore(t)
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "x"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestBuildDepsWithoutCloudinary(t *testing.T) {
	d := buildDeps(&config.Config{}, zaptest.NewLogger(t), store.NewMemory())
	assert.Nil(t, d.Uploader)
	assert.NotNil(t, d.History)
	assert.NotNil(t, d.Donations)
}

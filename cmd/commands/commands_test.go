package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{
		"tables": [{"table_number": 1, "seats": 2}],
		"menu_items": [
			{"name": "Lemonade", "category": "drink", "price": "50", "stock": 10, "availability": true},
			{"name": "Water", "category": "drink", "price": "10", "stock": 10, "min_stock": 0, "availability": true}
		],
		"bases": [{"name": "Bowl", "price": 30}],
		"ingredients": [{"name": "Egg", "category": "extra", "price": "10.50"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	seed, err := readSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.MenuItems, 2)
	assert.Equal(t, "50", seed.MenuItems[0].Price.String())
	assert.True(t, seed.MenuItems[0].Availability)
	assert.Equal(t, model.DefaultMinStock, seed.MenuItems[0].Item().MinStock)
	assert.Equal(t, 0, seed.MenuItems[1].Item().MinStock)
	assert.Equal(t, "10.5", seed.Ingredients[0].Price.String())
	assert.Equal(t, uint(1), seed.Tables[0].TableNumber)
}

func TestReadSeedErrors(t *testing.T) {
	_, err := readSeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = readSeed(path)
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "command-test")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user-id", "4", "--role", "kitchen", "--email", "chef@smartdine.local"})
	require.NoError(t, rootCmd.Execute())

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "command-test", ExpirationHours: 1})
	claims, err := jwtutil.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.UserID)
	assert.Equal(t, jwtutil.RoleKitchen, claims.Role)
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitialMigrationCascadesReadings(t *testing.T) {
	up, err := fs.ReadFile(migrationFiles, "sql/000001_init_iot.up.sql")
	require.NoError(t, err)

	sql := string(up)
	assert.Contains(t, sql, "REFERENCES iot_devices(id) ON DELETE CASCADE")
	assert.Contains(t, sql, "idx_iot_devices_device_id")
	assert.Contains(t, sql, "idx_iot_devices_mqtt_topic")
}

func TestRunAndRollbackRejectUnknownDatabase(t *testing.T) {
	err := Run("nodb://localhost/farmiot")
	assert.ErrorContains(t, err, "failed to create migrator")

	err = Rollback("nodb://localhost/farmiot")
	assert.ErrorContains(t, err, "failed to create migrator")
}

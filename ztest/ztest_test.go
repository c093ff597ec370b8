package ztest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZTest(t *testing.T) {
	entries, err := os.ReadDir("ztests")
	require.NoError(t, err)
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		tests, err := FromYAMLFile(filepath.Join("ztests", entry.Name()))
		require.NoError(t, err)
		for _, test := range tests {
			t.Run(test.Name, test.Run)
		}
	}
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munin-mcp/munin/internal/config"
	"github.com/munin-mcp/munin/internal/memory"
)

func TestNewMCPServer(t *testing.T) {
	store := memory.NewStore(memory.Options{})

	srv, err := NewMCPServer(config.DefaultConfig(), store, nil)
	require.NoError(t, err)

	assert.NotNil(t, srv.GetMCPServer())
	assert.Same(t, store, srv.GetStore())
}

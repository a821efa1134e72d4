// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGlobalConfig(t *testing.T) {
	cfg := DefaultGlobalConfig()
	assert.Equal(t, int64(1024*1024*1024), cfg.MaxSizeBytes)
	assert.True(t, cfg.AutoClean)
	assert.Equal(t, int64(1024*1024*1024), cfg.AutoCleanThreshold)
}

func TestSaveAndLoadGlobalConfig_RoundTrips(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := GlobalConfig{MaxSizeBytes: 42, AutoClean: false, AutoCleanThreshold: 7}
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadGlobalConfig_MissingFileReturnsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultGlobalConfig(), loaded)
}

func TestCheckAndCleanup_SkipsWhenAutoCleanDisabled(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	require.NoError(t, SaveConfig(GlobalConfig{AutoClean: false}))

	cacheDir := t.TempDir()
	assert.NoError(t, CheckAndCleanup(cacheDir))
}

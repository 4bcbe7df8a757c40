package config

import (
	"time"

	"github.com/bethropolis/easel/internal/store"
)

// Base application details
const AppName = "easel"
const ThemesDirName = "themes"
const DefaultThemeFileName = "theme.toml"   // Active theme file
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "easel.log"

// UI Layout
const StatusBarHeight = 1

// Status Bar
const MessageTimeout = 4 * time.Second

// Editor defaults
const DefaultHistoryDepth = 100
const DefaultCoalesceWindow = 400 * time.Millisecond
const DefaultPasteOffset = 10.0
const DefaultMoveStep = 1.0
const SystemClipboard = false

// Terminal cells are roughly twice as tall as they are wide.
const DefaultCellWidth = 10.0
const DefaultCellHeight = 20.0

// Autosave defaults
const DefaultDebounce = 500 * time.Millisecond
const DefaultSaveTimeout = 15 * time.Second

// Store drivers
const (
	DriverSQLite = store.DriverSQLite
	DriverRemote = store.DriverRemote
	DriverMemory = store.DriverMemory
)

const DefaultDBFileName = "easel.db"
const DefaultServerAddr = ":8080"

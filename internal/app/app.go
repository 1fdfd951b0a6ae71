package app

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blockpad/blockpad/internal/config"
	"github.com/blockpad/blockpad/internal/dispatcher"
	"github.com/blockpad/blockpad/internal/dispatcher/execctx"
	"github.com/blockpad/blockpad/internal/dispatcher/handler"
	"github.com/blockpad/blockpad/internal/dispatcher/handlers/block"
	"github.com/blockpad/blockpad/internal/dispatcher/handlers/history"
	"github.com/blockpad/blockpad/internal/dispatcher/handlers/selection"
	"github.com/blockpad/blockpad/internal/input"
	"github.com/blockpad/blockpad/internal/input/keymap"
	"github.com/blockpad/blockpad/internal/render"
	"github.com/blockpad/blockpad/internal/shortcuts"
	"github.com/blockpad/blockpad/internal/store"
)

// ActionQuit exits the application.
const ActionQuit = "app.quit"

// ScopeSidebar is the focus scope while the sidebar has keyboard focus.
// No builtin keymap targets it; only global bindings resolve there.
const ScopeSidebar = "sidebar"

// Application is the central coordinator for all blockpad components.
// It manages component lifecycles, wiring, and the main event loop.
type Application struct {
	mu sync.RWMutex

	config config.Config
	logger *Logger

	store      *store.Store
	view       *render.View
	dispatcher *dispatcher.Dispatcher
	input      *input.Handler
	binder     *shortcuts.Binder

	keymapLoader  *keymap.Loader
	keymapWatcher *config.Watcher

	logFile *os.File

	running  atomic.Bool
	quitting atomic.Bool
	done     chan struct{}

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	// Empty uses the default location.
	ConfigPath string

	// LogLevel overrides the configured logging verbosity.
	LogLevel string

	// LogFile overrides the configured log file path.
	LogFile string

	// ReadOnly locks the document against structural changes.
	ReadOnly bool
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		done: make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	// 2. Logger
	if err := app.initLogger(); err != nil {
		return &InitError{Component: "logger", Err: err}
	}

	// 3. Store
	storeOpts := []store.Option{
		store.WithDefaultBlockType(cfg.Editor.DefaultBlock),
		store.WithMaxHistory(cfg.Editor.MaxHistory),
	}
	lock := store.LockToken(cfg.Editor.DocumentLock)
	if app.opts.ReadOnly {
		lock = store.LockAll
	}
	if lock != store.LockNone {
		storeOpts = append(storeOpts, store.WithDocumentLock(lock))
	}
	app.store = store.New(storeOpts...)
	app.seedDocument()

	// 4. View
	view, err := render.New(app.store)
	if err != nil {
		return &InitError{Component: "view", Err: err}
	}
	app.view = view

	// 5. Dispatcher and action handlers
	app.dispatcher = dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	app.dispatcher.SetStore(app.store)
	app.dispatcher.SetView(app.view)
	app.registerHandlers()

	// 6. Input handler and shortcut binder
	app.input = input.NewHandler(input.Config{
		SequenceTimeout: cfg.SequenceTimeout(),
	}, keymap.NewRegistry())
	app.input.SetDispatchFunc(func(action input.Action) {
		result := app.dispatcher.Dispatch(action)
		if result.Status == handler.StatusError {
			app.logger.WithComponent("dispatch").Error("%s: %v", action.Name, result.Error)
		}
	})

	app.binder = shortcuts.NewBinder(app.store, app.input)
	if err := app.binder.Attach(); err != nil {
		return &InitError{Component: "shortcuts", Err: err}
	}

	// 7. User keymaps, with live reload
	if err := app.loadUserKeymaps(); err != nil {
		app.logger.WithComponent("keymap").Warn("loading user keymaps: %v", err)
	}

	return nil
}

// seedDocument gives a new session one empty block to type into, already
// selected. Without it there is no insertion anchor at all.
func (app *Application) seedDocument() {
	first := store.Block{
		ClientID: store.NewClientID(),
		Type:     app.config.Editor.DefaultBlock,
	}
	app.store.AppendBlock(first)
	app.store.SelectBlock(first.ClientID)
}

// initLogger builds the logger from config and option overrides.
func (app *Application) initLogger() error {
	level := app.config.Logging.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(level)

	path := app.config.Logging.File
	if app.opts.LogFile != "" {
		path = app.opts.LogFile
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", path, err)
		}
		app.logFile = f
		logCfg.Output = f
	}

	app.logger = NewLogger(logCfg)
	return nil
}

// registerHandlers wires the action namespaces into the dispatcher.
func (app *Application) registerHandlers() {
	app.dispatcher.RegisterNamespace("selection", selection.NewSelectionHandler())
	app.dispatcher.RegisterNamespace("history", history.NewHistoryHandler())
	app.dispatcher.RegisterNamespace("block", block.NewBlockHandler())

	app.dispatcher.RegisterHandlerFunc(ActionQuit, func(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
		app.requestQuit()
		return handler.Success()
	})
}

// loadUserKeymaps loads keymap JSON files from the configured
// directories and watches them for changes.
func (app *Application) loadUserKeymaps() error {
	if len(app.config.Keymap.Dirs) == 0 {
		return nil
	}

	app.keymapLoader = keymap.NewLoader()
	for _, dir := range app.config.Keymap.Dirs {
		app.keymapLoader.AddSearchPath(dir)
	}

	if err := app.keymapLoader.LoadAndRegister(app.input.Registry()); err != nil {
		return err
	}

	if !app.config.Keymap.LiveReload {
		return nil
	}

	watcher, err := config.NewWatcher(200 * time.Millisecond)
	if err != nil {
		return err
	}
	watcher.OnChange(func(path string) {
		app.logger.WithComponent("keymap").Info("reloading keymaps after change to %s", path)
		if rerr := app.keymapLoader.LoadAndRegister(app.input.Registry()); rerr != nil {
			app.logger.WithComponent("keymap").Error("reload failed: %v", rerr)
		}
	})
	for _, dir := range app.config.Keymap.Dirs {
		if werr := watcher.Watch(dir); werr != nil {
			app.logger.WithComponent("keymap").Warn("watching %s: %v", dir, werr)
		}
	}
	app.keymapWatcher = watcher
	return nil
}

// Store returns the block store.
func (app *Application) Store() *store.Store {
	return app.store
}

// Dispatcher returns the action dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	if app.logger == nil {
		return NullLogger
	}
	return app.logger
}

// requestQuit signals the event loop to exit.
func (app *Application) requestQuit() {
	if app.quitting.CompareAndSwap(false, true) {
		app.view.PostQuit()
	}
}

// Shutdown releases all resources. Safe to call more than once.
func (app *Application) Shutdown() {
	if app.binder != nil {
		app.binder.Detach()
	}
	if app.keymapWatcher != nil {
		_ = app.keymapWatcher.Close()
	}
	if app.input != nil {
		app.input.Close()
	}
	if app.view != nil {
		app.view.Fini()
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

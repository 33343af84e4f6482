package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/LFroesch/fcmd/internal/config"
	"github.com/LFroesch/fcmd/internal/fileops"
	"github.com/LFroesch/fcmd/internal/git"
	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/ops"
	"github.com/LFroesch/fcmd/internal/session"
	"github.com/LFroesch/fcmd/internal/store"
	"github.com/LFroesch/fcmd/internal/theme"
	"github.com/LFroesch/fcmd/internal/watch"
)

const gitCacheTTL = 3 * time.Second

var (
	debugFlag  bool
	noRestore  bool
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fcmd [dir]",
	Short: "Modal dual-panel terminal file manager",
	Long: `fcmd is a keyboard-driven file manager with two panels per tab,
vim-style modes, an undoable operation engine and persistent sessions.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "log at debug level")
	rootCmd.Flags().BoolVar(&noRestore, "no-restore", false, "start without restoring the previous session")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "config file (default ~/.config/fcmd/config.json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := logger.Init(debugFlag); err != nil {
		logger.Disable()
	}
	defer logger.Close()

	startDir, explicit, err := resolveStartDir(args)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if configFlag != "" {
		cfg = config.LoadFrom(configFlag)
	} else {
		cfg = config.Load()
	}

	trash, err := fileops.NewTrash(cfg.TrashDir)
	if err != nil {
		return fmt.Errorf("trash directory: %w", err)
	}
	engine := ops.NewEngine(ops.Options{
		Trash:           trash,
		SmallOpMaxItems: cfg.SmallOpMaxItems,
		SmallOpMaxBytes: cfg.SmallOpMaxBytes,
		UndoCapacity:    cfg.UndoCapacity,
	})

	st := store.OpenOrWarn(cfg.DBPath)
	if st != nil {
		defer st.Close()
	}

	opts := session.Options{
		Config:   cfg,
		Engine:   engine,
		Themes:   theme.NewRegistry(theme.UserDir()),
		Git:      git.NewCache(gitCacheTTL),
		StartDir: startDir,
	}
	if st != nil {
		opts.Save = st.Save
	}
	sess, err := session.New(opts)
	if err != nil {
		return err
	}

	if st != nil && !noRestore {
		snap, err := st.Load()
		if err != nil {
			logger.Warn("could not load previous session: %v", err)
		} else {
			if explicit {
				// a directory on the command line wins over saved tabs
				snap.Tabs = nil
			}
			sess.Restore(snap, startDir)
		}
	}

	var watcher *watch.Watcher
	if cfg.Watch {
		watcher, err = watch.New(watch.DefaultDebounce)
		if err != nil {
			logger.Warn("directory watching disabled: %v", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	logger.Info("fcmd started in %s", startDir)
	p := tea.NewProgram(newModel(sess, st, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// resolveStartDir returns the launch directory and whether it was given on
// the command line.
func resolveStartDir(args []string) (string, bool, error) {
	if len(args) == 0 {
		dir, err := os.Getwd()
		if err != nil {
			return "", false, err
		}
		return dir, false, nil
	}
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", false, err
	}
	if !info.IsDir() {
		return "", false, fmt.Errorf("%s is not a directory", args[0])
	}
	return dir, true, nil
}

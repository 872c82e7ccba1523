package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cesta-app/cesta/internal/utils"
	"github.com/cesta-app/cesta/pkg/basket"
	"github.com/cesta-app/cesta/pkg/catalog"
	"github.com/cesta-app/cesta/pkg/optimizer"
)

func basketPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("basket")
	if path == "" {
		path = "cesta.json"
	}
	return path
}

func loadSnapshot(path string) (basket.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("basket file not found: %s (run `cesta generate` first)", path)
		}
		return nil, err
	}
	snap, err := basket.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// saveLockTimeout bounds how long a save waits for another cesta process
// writing the same basket file.
const saveLockTimeout = 10 * time.Second

// saveSnapshot writes the basket file through a temporary file so a crash
// never leaves it half written.
func saveSnapshot(path string, snap basket.Snapshot) error {
	data, err := basket.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveLockTimeout)
	defer cancel()
	return utils.WithFileLock(ctx, path, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(path), ".cesta-*.json")
		if err != nil {
			return err
		}
		if _, err := tmp.Write(append(data, '\n')); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		return os.Rename(tmp.Name(), path)
	})
}

func loadStore(cmd *cobra.Command) (*basket.Store, string, error) {
	path := basketPath(cmd)
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, path, err
	}
	return basket.NewStore(snap), path, nil
}

func versionArg(s string) (basket.VersionKey, error) {
	key, ok := basket.ParseVersionKey(s)
	if !ok {
		return "", fmt.Errorf("unknown version %q (use a, b or c)", s)
	}
	return key, nil
}

func sectionArg(s string) (basket.SectionName, error) {
	name, ok := basket.ParseSection(s)
	if !ok {
		return "", fmt.Errorf("unknown section %q (use desayuno, comida, merienda or cena)", s)
	}
	return name, nil
}

func newOptimizer(cmd *cobra.Command) (*optimizer.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	return optimizer.NewClient(optimizer.Config{
		BaseURL:  viper.GetString("optimizer.url"),
		Token:    viper.GetString("optimizer.token"),
		Timeout:  viper.GetDuration("optimizer.timeout"),
		RetryMax: viper.GetInt("optimizer.retries"),
		Proxy:    proxy,
		Logger:   utils.Log,
	})
}

// newSearcher returns the remote catalog when catalog.url is set and the
// local SQLite catalog otherwise. The returned function releases it.
func newSearcher(cmd *cobra.Command) (catalog.Searcher, func(), error) {
	if url := viper.GetString("catalog.url"); url != "" {
		proxy, _ := cmd.Flags().GetString("proxy")
		remote, err := catalog.NewRemote(catalog.RemoteConfig{
			BaseURL:  url,
			Token:    viper.GetString("optimizer.token"),
			Timeout:  viper.GetDuration("optimizer.timeout"),
			RetryMax: viper.GetInt("optimizer.retries"),
			Proxy:    proxy,
			Logger:   utils.Log,
		})
		if err != nil {
			return nil, nil, err
		}
		return remote, func() {}, nil
	}

	path, err := utils.CatalogPath(viper.GetString("catalog.path"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("catalog not found: %s (run `cesta catalog import` or set catalog.url)", path)
	}
	db, err := catalog.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

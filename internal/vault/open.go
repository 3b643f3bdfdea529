package vault

import (
	"fmt"

	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/dgallion1/docfreeze/internal/pathstore"
)

// Open builds the vault backend selected by cfg. The returned close function
// releases backend connections and is never nil.
func Open(cfg config.Config) (Vault, func(), error) {
	switch cfg.VaultBackend {
	case config.BackendDir, "":
		return NewDir(cfg.VaultDir), func() {}, nil
	case config.BackendPathstore:
		client := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		return NewRemote(client, cfg.PathstorePrefix), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown vault backend: %q", cfg.VaultBackend)
}

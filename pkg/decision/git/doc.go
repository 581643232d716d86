// Package git provides Git repository integration for decision tree management.
//
// This package enables GitOps workflows by cloning tree repositories,
// watching for changes, and automatically reloading trees when commits
// are pushed. It supports HTTPS and SSH authentication, branch-based
// environments, and safe rollback mechanisms.
//
// # Basic Usage
//
//	cfg := &config.GitTreeConfig{
//		Repository: "https://github.com/company/trees.git",
//		Branch:     "main",
//		Path:       "trees/",
//	}
//
//	repo, err := git.NewRepository(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := repo.Clone(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Change Detection
//
// The watcher monitors the repository for changes and triggers reloads:
//
//	watcher := git.NewWatcher(repo, 30*time.Second, 10*time.Second, reloadCallback)
//	watcher.Start(context.Background())
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - SSH key-based: Public key authentication
//   - None: Public repositories
//
// # Rollback
//
// Safely rollback to previous tree versions:
//
//	if err := repo.Rollback(ctx, "a1b2c3d4"); err != nil {
//		log.Fatal(err)
//	}
package git

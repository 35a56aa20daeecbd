//go:build mage

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/sirupsen/logrus"
)

const binary = "bin/splittax"

// Build tidies deps, then compiles to ./bin/splittax with version information.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building splittax...")
	return sh.RunWith(map[string]string{"CGO_ENABLED": "1"},
		"go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/splittax")
}

func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s", version, commit)
}

// Serve builds then starts the API server.
func Serve() error {
	mg.Deps(Build)
	fmt.Println(">> Starting API server...")
	return sh.RunV(binary, "serve")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Race runs all unit tests with the race detector.
func Race() error {
	fmt.Println(">> Running tests with -race...")
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, generated reports and the local SQLite DB.
func Clean() error {
	fmt.Println(">> Cleaning...")
	if err := sh.Rm("bin"); err != nil {
		return err
	}
	db := os.Getenv("SPLITTAX_DB")
	if db == "" {
		db = "splittax.db"
	}
	for _, f := range []string{db, db + "-wal", db + "-shm"} {
		if err := sh.Rm(f); err != nil {
			return err
		}
	}
	return nil
}

// Install builds and installs the binary to $GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.Run("go", "install", "-ldflags", ldflags(), "./cmd/splittax")
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("module", "mage").Warnf("error loading .env file: %v", err)
	}
}

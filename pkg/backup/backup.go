package backup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Execute backs up the alarm store to dir. Supported drivers: sqlite
// (file copy) and mysql (mysqldump).
func Execute(driver, dsn, dir string) error {
	switch driver {
	case "", "sqlite":
		dst := filepath.Join(dir, fmt.Sprintf("glarm_backup_%s.db", time.Now().Format("20060102_150405")))
		return backupSQLite(dsn, dst)
	case "mysql":
		dst := filepath.Join(dir, fmt.Sprintf("glarm_backup_%s.sql", time.Now().Format("20060102_150405")))
		return backupMySQL(dsn, dst)
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

func ensureDir(dst string) error {
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, os.ModePerm)
	}
	return nil
}

func backupSQLite(src, dst string) error {
	if src == "" {
		return fmt.Errorf("in-memory database cannot be backed up")
	}
	if err := ensureDir(dst); err != nil {
		return fmt.Errorf("failed to create backup directory: %v", err)
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error opening source file: %v", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %v", err)
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("error copying data: %v", err)
	}
	return nil
}

func backupMySQL(dsn, dst string) error {
	if err := ensureDir(dst); err != nil {
		return fmt.Errorf("failed to create backup directory: %v", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %v", err)
	}
	defer out.Close()

	cmd := exec.Command("mysqldump", dsn)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to backup MySQL database: %v", err)
	}
	return nil
}

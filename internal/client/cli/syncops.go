package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// SyncStatus prints the current sync estimate.
func (a *App) SyncStatus(ctx context.Context) error {
	s := a.reconciler.Status(ctx)

	onOff := "off"
	if s.Enabled {
		onOff = "on"
	}
	printlnFn(fmt.Sprintf("Sync:       %s", onOff))
	printlnFn(fmt.Sprintf("In sync:    %t", s.Synced))
	if s.LastSyncTime.IsZero() {
		printlnFn("Last pull:  never")
	} else {
		printlnFn(fmt.Sprintf("Last pull:  %s", s.LastSyncTime.Format("2006-01-02 15:04:05")))
	}
	printlnFn(fmt.Sprintf("Local:      %d entries", s.LocalCount))
	printlnFn(fmt.Sprintf("Remote:     %d entries", s.RemoteCount))
	return nil
}

// EnableSync turns the reconciler back on.
func (a *App) EnableSync(ctx context.Context) error {
	a.reconciler.Enable()
	printlnFn("Sync enabled")
	return nil
}

// DisableSync closes the push gate until re-enabled. Remote changes keep
// applying so the local copy does not drift.
func (a *App) DisableSync(ctx context.Context) error {
	a.reconciler.Disable()
	printlnFn("Sync disabled")
	return nil
}

// ForcePush uploads every local entry to the server regardless of staleness.
func (a *App) ForcePush(ctx context.Context) error {
	if err := a.reconciler.ForcePushAll(ctx); err != nil {
		log.Printf("force push failed: %v", err)
		return err
	}
	printlnFn("All local entries pushed")
	return nil
}

// Restore replaces all local data with the server's copy after an explicit
// confirmation.
func (a *App) Restore(ctx context.Context) error {
	ok, err := Confirm(a.reader, "This will replace ALL local entries with the cloud copy.", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}
	if err := a.reconciler.PullAllOverwritingLocal(ctx); err != nil {
		log.Printf("restore failed: %v", err)
		return err
	}
	printlnFn("Local data restored from the cloud")
	return nil
}

// Mirror replaces all server data with the local copy after an explicit
// confirmation. Entries that exist only on the server are lost.
func (a *App) Mirror(ctx context.Context) error {
	ok, err := Confirm(a.reader, "This will replace ALL cloud entries with the local copy. Entries that exist only in the cloud will be permanently deleted.", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}
	if err := a.reconciler.PushAllOverwritingRemote(ctx); err != nil {
		log.Printf("mirror failed: %v", err)
		return err
	}
	printlnFn("Cloud data replaced with the local copy")
	return nil
}

// TestConnection pings the server and reports the verdict.
func (a *App) TestConnection(ctx context.Context) error {
	ok, detail := a.reconciler.TestConnection(ctx)
	if ok {
		printlnFn(fmt.Sprintf("Connection OK: %s", detail))
	} else {
		printlnFn(fmt.Sprintf("Connection failed: %s", detail))
	}
	return nil
}

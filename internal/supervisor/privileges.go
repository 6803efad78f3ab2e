package supervisor

import (
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// dropPrivileges lowers the process to the requesting user's uid/gid
// when it is running as root, so a daemon launched via sudo does not
// keep scanning the user's files with root credentials. The requesting
// user is named by $USER, which must be set in that case. Running as a
// regular user already, this is a no-op.
func dropPrivileges() error {
	if os.Geteuid() != 0 {
		return nil
	}

	name := os.Getenv("USER")
	if name == "" || name == "root" {
		return syncerrs.SupervisorError("USER must name a non-root user to drop privileges to", nil)
	}

	u, err := user.Lookup(name)
	if err != nil {
		return syncerrs.SupervisorError("look up user", err).WithDetail(name)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return syncerrs.SupervisorError("parse uid", err).WithDetail(u.Uid)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return syncerrs.SupervisorError("parse gid", err).WithDetail(u.Gid)
	}

	// Group first: once the uid is dropped, setgid is no longer allowed.
	if err := syscall.Setgid(gid); err != nil {
		return syncerrs.SupervisorError("set gid", err).WithDetail(u.Gid)
	}
	if err := syscall.Setuid(uid); err != nil {
		return syncerrs.SupervisorError("set uid", err).WithDetail(u.Uid)
	}
	return nil
}

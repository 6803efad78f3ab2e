package supervisor

import (
	"os"
	"path/filepath"
)

// Paths derives the conventional socket/pid/log layout for a given
// package name, all rooted at <os.TempDir()>/<package>/.
type Paths struct {
	Dir    string
	Socket string
	Pid    string
	Out    string
	Err    string
	Lock   string
}

// DerivePaths computes Paths for pkg.
func DerivePaths(pkg string) Paths {
	dir := filepath.Join(os.TempDir(), pkg)
	return Paths{
		Dir:    dir,
		Socket: filepath.Join(dir, pkg+".sock"),
		Pid:    filepath.Join(dir, pkg+".pid"),
		Out:    filepath.Join(dir, pkg+".out"),
		Err:    filepath.Join(dir, pkg+".err"),
		Lock:   filepath.Join(dir, pkg+".lock"),
	}
}

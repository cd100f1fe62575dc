package version

import (
	"fmt"
	"runtime"
)

// Build metadata, overridden with -ldflags "-X".
// 构建元数据，通过 -ldflags "-X" 覆盖。
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String renders the version line printed by the version command.
// String 渲染 version 命令输出的版本行。
func String() string {
	return fmt.Sprintf("wowclp %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

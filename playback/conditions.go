package playback

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/filesystem"
)

const powerSupplyDir = "/sys/class/power_supply"

// DetectCondition reads the device power class from the power-supply sysfs.
// Desktop machines without a battery, other platforms and read failures all
// resolve to charging. Cellular detection has no portable signal here, so the
// connection class is always non-cellular; profiles bound to cellular
// conditions are reachable through configuration only.
func DetectCondition() Condition {
	cond := Condition{Charging: true}
	if runtime.GOOS != constant.Linux {
		return cond
	}

	entries, err := filesystem.API().ReadDir(powerSupplyDir)
	if err != nil {
		return cond
	}

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "BAT") {
			continue
		}
		status, err := filesystem.API().ReadFile(
			filepath.Join(powerSupplyDir, entry.Name(), "status"),
		)
		if err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(string(status)), "Discharging") {
			cond.Charging = false
		}
		break
	}
	return cond
}

package a

import "os"

const ownerOnly = 0o600

func write(data []byte) {
	_ = os.WriteFile("a", data, 0o600) // want `use fileutil.ReadWriteUserPermission instead of hardcoded '0o600'`
	_ = os.WriteFile("b", data, 0644)  // want `use fileutil.ReadWriteUserReadOthers instead of hardcoded '0644'`
	_ = os.MkdirAll("c", 0o755)        // want `use fileutil.ReadWriteExecuteUserReadExecuteOthers instead of hardcoded '0o755'`
	_ = os.WriteFile("d", data, ownerOnly)
	_ = os.WriteFile("e", data, 0o640)
	_ = os.Chmod("f", 0o600)
}

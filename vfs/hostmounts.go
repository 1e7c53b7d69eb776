package vfs

import "github.com/moby/sys/mountinfo"

// HostMount is one line of the simulator host's real mount table, as
// a point of comparison against the simulated MountTable when
// debugging the demo driver — this package never mounts anything on
// the host, it only reads /proc/self/mountinfo for diagnostics.
type HostMount struct {
	Mountpoint string
	FSType     string
	Source     string
}

// DumpHostMounts reads the running host's mount table via
// github.com/moby/sys/mountinfo, the same parser dockerd uses to
// inspect container mount namespaces. It has no effect on the
// simulated MountTable and does not read it; it is a diagnostic only,
// and cmd/sortixkernel-sim does not call it.
func DumpHostMounts() ([]HostMount, error) {
	infos, err := mountinfo.GetMounts(nil)
	if err != nil {
		return nil, err
	}
	out := make([]HostMount, 0, len(infos))
	for _, info := range infos {
		out = append(out, HostMount{
			Mountpoint: info.Mountpoint,
			FSType:     info.FSType,
			Source:     info.Source,
		})
	}
	return out, nil
}

//go:build windows

package sampler

func setNice(int, int) error { return ErrPriorityUnsupported }

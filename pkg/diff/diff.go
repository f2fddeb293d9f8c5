// Package diff 提供文本差异计算，用于历史记录展示
package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// PatchText returns a unidiff-style patch describing the change from old to new.
// Empty when the inputs are identical.
// PatchText 返回描述 old 到 new 变更的补丁文本，两者相同时为空。
func PatchText(old, new string) string {
	if old == new {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	patches := dmp.PatchMake(old, diffs)
	return dmp.PatchToText(patches)
}

// Apply applies a patch produced by PatchText to base.
// Apply 将 PatchText 生成的补丁应用到 base。
func Apply(base, patch string) (string, bool) {
	if patch == "" {
		return base, true
	}
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return base, false
	}
	result, applied := dmp.PatchApply(patches, base)
	for _, ok := range applied {
		if !ok {
			return result, false
		}
	}
	return result, true
}

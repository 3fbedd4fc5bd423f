package graph

type AssetMeta struct {
	IsCommonJS  bool
	IsES6Module bool

	// This can only ever go from false to true
	shouldWrap bool
}

// The module body must be deferred into an init function instead of being
// inlined at its first use:
//
//   // dep.js
//   var x, $dep$executed = false;
//   function $dep$init() {
//     if ($dep$executed) return;
//     $dep$executed = true;
//     x = 123;
//   }
//
func (meta *AssetMeta) ShouldWrap() bool {
	return meta.shouldWrap
}

func (meta *AssetMeta) MarkShouldWrap() {
	meta.shouldWrap = true
}

type DependencyMeta struct {
	// Set by earlier transformation stages when the import happens somewhere
	// other than the top level (inside a function, a conditional, a loop) so
	// the target can no longer be evaluated eagerly
	ShouldWrap bool
}

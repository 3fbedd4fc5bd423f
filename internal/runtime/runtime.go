package runtime

// This is the path used in diagnostics when either block fails to parse
const SourcePath = "<runtime>"

// Helpers is placed at the top of every concatenated bundle. The functions
// are referenced by the rewritten module bodies and are removed again by the
// downstream minifier when nothing uses them.
const Helpers = `
function $hoist$interopDefault(a) {
	return a && a.__esModule ? { d: a.default } : { d: a }
}

function $hoist$defineInteropFlag(a) {
	Object.defineProperty(a, '__esModule', { value: true })
}

function $hoist$exportWildcard(dest, source) {
	Object.keys(source).forEach(function (key) {
		if (key === 'default' || key === '__esModule') {
			return
		}
		Object.defineProperty(dest, key, {
			enumerable: true,
			get: function get() {
				return source[key]
			}
		})
	})
	return dest
}

function $hoist$missingModule(name) {
	var err = new Error("Cannot find module '" + name + "'")
	err.code = 'MODULE_NOT_FOUND'
	throw err
}

var $hoist$global =
	typeof globalThis !== 'undefined' ? globalThis :
	typeof self !== 'undefined' ? self :
	typeof window !== 'undefined' ? window :
	typeof global !== 'undefined' ? global : {}
`

// Prelude installs the shared module registry for bundles in the "global"
// output format that other bundles load modules from at runtime
const Prelude = `
var hoistRequire = (function (previousRequire) {
	var globalObject =
		typeof globalThis !== 'undefined' ? globalThis :
		typeof self !== 'undefined' ? self :
		typeof window !== 'undefined' ? window :
		typeof global !== 'undefined' ? global : {}

	if (previousRequire && previousRequire.register) {
		return previousRequire
	}

	var modules = {}

	function hoistRequire(id) {
		var init = modules[id]
		if (!init) {
			var err = new Error("Cannot find module '" + id + "'")
			err.code = 'MODULE_NOT_FOUND'
			throw err
		}
		return init()
	}

	hoistRequire.register = function register(id, init) {
		modules[id] = init
	}

	globalObject.hoistRequire = hoistRequire
	return hoistRequire
})(typeof hoistRequire === 'function' ? hoistRequire : null)
`

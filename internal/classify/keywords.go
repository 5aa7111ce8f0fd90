package classify

// reservedKeywords is the built-in exact-match set of engine and language
// identifiers that frequently surface as string constants but are never
// player-facing text. Applied only when the scan configuration enables it.
var reservedKeywords = map[string]struct{}{}

func init() {
	for _, kw := range []string{
		// C# literals and common tokens.
		"true", "false", "null", "void", "string", "int", "float", "bool",
		"object", "enum", "struct", "class", "public", "private", "static",
		// Engine lifecycle methods.
		"Awake", "Start", "Update", "LateUpdate", "FixedUpdate",
		"OnEnable", "OnDisable", "OnDestroy", "OnGUI",
		"OnTriggerEnter", "OnTriggerExit", "OnCollisionEnter", "OnCollisionExit",
		// Engine object and asset names.
		"GameObject", "Transform", "MonoBehaviour", "ScriptableObject",
		"Renderer", "Collider", "Rigidbody", "AudioSource", "Animator",
		"MainCamera", "Player", "Enemy", "Untagged", "Default", "None",
		// Common shader and material tokens.
		"_MainTex", "_Color", "_BumpMap", "Standard", "Diffuse", "Unlit",
		// Axis and input names.
		"Horizontal", "Vertical", "Fire1", "Fire2", "Jump", "Submit", "Cancel",
	} {
		reservedKeywords[kw] = struct{}{}
	}
}

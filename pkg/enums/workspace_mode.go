package enums

// WorkspaceMode is the resolved isolation mode for a session. Legacy mode is
// only entered when the membership infrastructure is absent from the schema,
// never on a permissions failure.
type WorkspaceMode string

const (
	WorkspaceModeMulti  WorkspaceMode = "multi"
	WorkspaceModeLegacy WorkspaceMode = "legacy"
)

func (m WorkspaceMode) String() string {
	return string(m)
}

// IsLegacy reports whether tenant scoping is a no-op.
func (m WorkspaceMode) IsLegacy() bool {
	return m == WorkspaceModeLegacy
}

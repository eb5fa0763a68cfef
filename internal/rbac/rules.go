package rbac

const (
	PermQuizCreate      = "quiz:create"
	PermQuizView        = "quiz:view"
	PermQuizViewKey     = "quiz:view-key"
	PermQuizDelete      = "quiz:delete"
	PermAttemptCreate   = "attempt:create"
	PermAttemptSubmit   = "attempt:submit"
	PermAttemptViewOwn  = "attempt:view-own"
	PermAttemptViewAll  = "attempt:view-all"
	PermProgressViewOwn = "progress:view-own"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		PermQuizView,
		PermAttemptCreate,
		PermAttemptSubmit,
		PermAttemptViewOwn,
		PermProgressViewOwn,
	},
	"teacher": {
		"quiz:*",
		PermAttemptCreate,
		PermAttemptSubmit,
		PermAttemptViewOwn,
		PermAttemptViewAll,
		PermProgressViewOwn,
	},
	"admin": {
		"*", // everything
	},
}

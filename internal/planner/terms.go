// Package planner implements the deterministic, rule-based planning engine
// that turns a natural-language task request into a validated Plan. Zoe
// (the planning persona addressed in generated prompts) is this engine: it
// never calls out to an LLM to decide the subtask graph, it pattern-matches
// the objective against fixed term lists and ranks files already on disk.
package planner

// codeChangeTerms trip profile.codeRequested when present in the combined
// title+objective text.
var codeChangeTerms = []string{
	"implement", "fix", "build", "create", "add", "update", "refactor",
	"migrate", "wire", "integrate", "repair", "ship", "support",
	"修复", "实现", "新增", "重构",
}

// foundationSplitTerms signal that the change needs a separate foundation
// subtask ahead of the main implementation subtask.
var foundationSplitTerms = []string{
	"refactor", "migrate", "extract", "restructure", "integrate", "wire",
	"multi-step", "重构", "迁移", "拆分",
}

// docActionTerms trip profile.docsRequested.
var docActionTerms = []string{
	"document", "documenter", "write docs", "update docs",
	"update documentation", "add docs", "refresh readme", "readme",
	"changelog", "guide", "manual",
	"更新文档", "补充文档", "完善文档", "撰写文档", "文档更新", "说明文档", "操作手册",
}

// analysisTerms trip profile.analysisRequested.
var analysisTerms = []string{
	"investigate", "analyze", "audit", "review", "triage", "inspect",
	"understand", "progress", "status", "read", "current state", "confirm",
	"survey", "assess", "inventory",
	"分析", "审查", "排查", "进度", "阅读", "确认", "现状", "调研", "盘点",
}

// foundationFileTerms bias file-ranking toward core/base/schema-shaped
// paths when picking the foundation subtask's files hint.
var foundationFileTerms = []string{
	"core", "base", "schema", "model", "service", "helper", "lib", "utils",
	"session", "client", "adapter",
}

// implementationFileTerms bias file-ranking toward route/handler-shaped
// paths when picking the main implementation subtask's files hint.
var implementationFileTerms = []string{
	"route", "handler", "controller", "api", "auth", "view", "screen",
	"component", "feature", "flow",
}

// docFileTerms bias file-ranking toward documentation paths.
var docFileTerms = []string{"readme", "docs", "guide", "manual", "runbook", "changelog"}

// repoScanRoots are the top-level directories the file-hint discoverer
// walks looking for candidates, in priority order.
var repoScanRoots = []string{
	"", "src", "app", "server", "backend", "frontend", "scripts", "docs",
	"prisma", "tests",
}

// repoScanPriorities ranks well-known root files/directories for the
// shallow (depth <= 2) discovery pass used to seed a plan's top-level
// filesHint when the planner has no phase-specific signal yet.
var repoScanPriorities = []string{
	"readme.md", "package.json", "pyproject.toml", "setup.py",
	"requirements.txt", "cargo.toml", "go.mod", "tsconfig.json",
	"next.config.js", "prisma/schema.prisma",
	"src/", "app/", "server/", "scripts/", "tests/", "docs/",
}

// codeFileExtensions are the source extensions considered "code" when
// scoring phase-specific file candidates.
var codeFileExtensions = []string{
	".py", ".ts", ".tsx", ".js", ".jsx", ".go", ".rs", ".java", ".kt",
	".rb", ".php", ".cs", ".sql", ".prisma", ".sh",
}

// configFallbackFiles are manifest files promoted into the implementation
// file set even when they don't match any term, since a code change often
// needs a one-line config bump alongside it.
var configFallbackFiles = []string{
	"package.json", "pyproject.toml", "go.mod", "cargo.toml",
	"tsconfig.json", "next.config.js", "prisma/schema.prisma",
}

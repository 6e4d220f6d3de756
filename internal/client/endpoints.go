package client

// endpoints maps a domain entity type to its wire collection endpoint.
// The table is fixed; a type that is missing here is a resolvable
// "unknown type" condition for callers, never a crash.
var endpoints = map[string]string{
	"application_module":     "application_modules",
	"attachment":             "attachments",
	"automated_run":          "automated_runs",
	"bdd_spec":               "bdd_specs",
	"ci_build":               "ci_builds",
	"ci_server":              "ci_servers",
	"comment":                "comments",
	"commit":                 "scm_commits",
	"defect":                 "defects",
	"defect_root":            "work_item_roots",
	"epic":                   "epics",
	"feature":                "features",
	"gherkin_automated_run":  "gherkin_automated_runs",
	"gherkin_test":           "gherkin_tests",
	"list_node":              "list_nodes",
	"metaphase":              "metaphases",
	"milestone":              "milestones",
	"model_item":             "model_items",
	"phase":                  "phases",
	"pipeline":               "pipelines",
	"pipeline_node":          "pipeline_nodes",
	"pipeline_run":           "pipeline_runs",
	"product_area":           "product_areas",
	"program":                "programs",
	"quality_story":          "quality_stories",
	"release":                "releases",
	"requirement":            "requirements",
	"requirement_document":   "requirement_documents",
	"requirement_folder":     "requirement_folders",
	"requirement_root":       "requirement_roots",
	"run":                    "runs",
	"run_manual":             "manual_runs",
	"run_suite":              "suite_runs",
	"sprint":                 "sprints",
	"story":                  "stories",
	"suite_run":              "suite_runs",
	"task":                   "tasks",
	"taxonomy_category_node": "taxonomy_category_nodes",
	"taxonomy_item_node":     "taxonomy_item_nodes",
	"taxonomy_node":          "taxonomy_nodes",
	"team":                   "teams",
	"test":                   "tests",
	"test_automated":         "automated_tests",
	"test_manual":            "manual_tests",
	"test_suite":             "test_suites",
	"transition":             "transitions",
	"user":                   "users",
	"user_tag":               "user_tags",
	"work_item":              "work_items",
	"work_item_root":         "work_item_roots",
	"workspace_user":         "workspace_users",
}

// EndpointForType returns the wire endpoint for a domain entity type.
// ok is false for unknown types.
func EndpointForType(entityType string) (string, bool) {
	ep, ok := endpoints[entityType]
	return ep, ok
}

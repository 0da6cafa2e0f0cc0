package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

const componentsPrefix = "#/components/schemas/"

// ProjectIDPattern is the pattern a project id must match.
const ProjectIDPattern = `^[a-zA-Z0-9_~.-]+$`

// ProjectIDMaxLength is the maximum length of a project id.
const ProjectIDMaxLength = 100

// ConstraintOperators are the operators a segment constraint may use.
var ConstraintOperators = []interface{}{
	"NOT_IN", "IN",
	"STR_ENDS_WITH", "STR_STARTS_WITH", "STR_CONTAINS",
	"NUM_EQ", "NUM_GT", "NUM_GTE", "NUM_LT", "NUM_LTE",
	"DATE_AFTER", "DATE_BEFORE",
	"SEMVER_EQ", "SEMVER_GT", "SEMVER_LT",
}

// schemaSet builds named schemas in dependency order so that references
// carry their resolved value.
type schemaSet struct {
	schemas map[string]*openapi3.Schema
	order   []string
}

func (s *schemaSet) add(name string, schema *openapi3.Schema) {
	s.schemas[name] = schema
	s.order = append(s.order, name)
}

func (s *schemaSet) ref(name string) *openapi3.SchemaRef {
	schema, ok := s.schemas[name]
	if !ok {
		panic("openapi: schema " + name + " referenced before it was declared")
	}
	return openapi3.NewSchemaRef(componentsPrefix+name, schema)
}

func (s *schemaSet) arrayOf(name string) *openapi3.Schema {
	arr := openapi3.NewArraySchema()
	arr.Items = s.ref(name)
	return arr
}

func object(description string, required ...string) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Description = description
	schema.Required = required
	return schema
}

func closed(schema *openapi3.Schema) *openapi3.Schema {
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}
	return schema
}

func described(schema *openapi3.Schema, description string) *openapi3.Schema {
	schema.Description = description
	return schema
}

func nullableString(description string) *openapi3.Schema {
	return described(openapi3.NewStringSchema().WithNullable(), description)
}

func nullableDate(description string) *openapi3.Schema {
	return described(openapi3.NewDateTimeSchema().WithNullable(), description)
}

func stringArray(description string) *openapi3.Schema {
	return described(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()), description)
}

func modeSchema() *openapi3.Schema {
	return described(
		openapi3.NewStringSchema().WithEnum("open", "protected", "private"),
		"The project's collaboration mode. Determines whether non-project members can submit change requests or not.",
	)
}

// buildSchemas declares every component schema of the admin API.
func buildSchemas() *schemaSet {
	s := &schemaSet{schemas: map[string]*openapi3.Schema{}}

	s.add("errorSchema", object("An error returned by the API", "id", "name", "message").
		WithProperty("id", described(openapi3.NewStringSchema(), "A unique identifier for this error instance")).
		WithProperty("name", described(openapi3.NewStringSchema(), "The kind of error that occurred")).
		WithProperty("message", described(openapi3.NewStringSchema(), "A description of what went wrong")).
		WithProperty("details", openapi3.NewArraySchema().WithItems(
			object("", "message").
				WithProperty("message", openapi3.NewStringSchema()).
				WithProperty("description", openapi3.NewStringSchema()).
				WithProperty("path", openapi3.NewStringSchema()),
		)))

	s.add("userSchema", object("An account holder", "id").
		WithProperty("id", described(openapi3.NewIntegerSchema(), "The user id")).
		WithProperty("name", nullableString("Name of the user")).
		WithProperty("email", described(openapi3.NewStringSchema(), "Email of the user")).
		WithProperty("username", nullableString("A unique username for the user")).
		WithProperty("rootRole", described(openapi3.NewIntegerSchema().WithNullable(), "The id of the root role of the user")).
		WithProperty("seenAt", nullableDate("The last time this user logged in")).
		WithProperty("createdAt", nullableDate("The user was created at this time")))

	groupUser := object("A user belonging to a group", "user").
		WithPropertyRef("user", s.ref("userSchema")).
		WithProperty("joinedAt", nullableDate("The date when the user joined the group")).
		WithProperty("createdBy", nullableString("The username of the user who added this user to this group"))
	s.add("groupUserSchema", groupUser)

	s.add("groupSchema", object("A detailed information about a user group", "name").
		WithProperty("id", described(openapi3.NewIntegerSchema(), "The group id")).
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of the group")).
		WithProperty("description", nullableString("A custom description of the group")).
		WithProperty("mappingsSSO", stringArray("A list of SSO groups that should map to this flagkeep group")).
		WithProperty("rootRole", described(openapi3.NewIntegerSchema().WithNullable(), "A role id that is used as the root role for all users in this group")).
		WithProperty("createdBy", nullableString("A user who created this group")).
		WithProperty("createdAt", nullableDate("When was this group created")).
		WithProperty("userCount", described(openapi3.NewIntegerSchema(), "The number of users that belong to this group")).
		WithProperty("users", described(s.arrayOf("groupUserSchema"), "A list of users belonging to this group")))

	s.add("groupsSchema", object("A list of user groups").
		WithProperty("groups", described(s.arrayOf("groupSchema"), "A list of groups")))

	s.add("createGroupSchema", closed(object("A detailed information about a user group", "name").
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("description", nullableString("A custom description of the group")).
		WithProperty("mappingsSSO", stringArray("A list of SSO groups that should map to this group")).
		WithProperty("rootRole", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("users", openapi3.NewArraySchema().WithItems(
			object("A user to add to the group", "user").
				WithProperty("user", object("", "id").WithProperty("id", openapi3.NewIntegerSchema())),
		))))

	s.add("constraintSchema", object("A strategy constraint", "contextName", "operator").
		WithProperty("contextName", described(openapi3.NewStringSchema(), "The name of the context field that this constraint should apply to")).
		WithProperty("operator", described(openapi3.NewStringSchema().WithEnum(ConstraintOperators...), "The operator to use when evaluating this constraint")).
		WithProperty("caseInsensitive", described(openapi3.NewBoolSchema(), "Whether the operator should be case sensitive or not")).
		WithProperty("inverted", described(openapi3.NewBoolSchema(), "Whether the result should be negated or not")).
		WithProperty("values", stringArray("The context values that should be used for constraint evaluation")).
		WithProperty("value", described(openapi3.NewStringSchema(), "The context value that should be used for constraint evaluation")))

	s.add("segmentSchema", object("Represents a segment of users defined by a set of constraints", "id", "constraints").
		WithProperty("id", described(openapi3.NewIntegerSchema(), "The segment's id")).
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of the segment")).
		WithProperty("description", nullableString("The description of the segment")).
		WithProperty("project", nullableString("The project the segment belongs to, if any")).
		WithProperty("constraints", described(s.arrayOf("constraintSchema"), "The list of constraints that make up this segment")).
		WithProperty("createdBy", nullableString("The creator's email or username")).
		WithProperty("createdAt", nullableDate("When the segment was created")))

	s.add("segmentsSchema", closed(object("A list of user segments").
		WithProperty("segments", described(s.arrayOf("segmentSchema"), "A list of segments"))))

	s.add("upsertSegmentSchema", closed(object("Data used to create or update a segment", "name", "constraints").
		WithProperty("name", described(openapi3.NewStringSchema().WithMinLength(1), "The name of the segment")).
		WithProperty("description", nullableString("A description of what the segment is for")).
		WithProperty("project", nullableString("The project the segment belongs to if any")).
		WithProperty("constraints", described(s.arrayOf("constraintSchema"), "The list of constraints that make up this segment"))))

	s.add("nameSchema", object("An object with a name", "name").
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of the represented object")))

	s.add("projectSchema", object("A definition of the project used for projects listing purposes", "id", "name").
		WithProperty("id", described(openapi3.NewStringSchema(), "The id of this project")).
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of this project")).
		WithProperty("description", nullableString("Additional information about the project")).
		WithProperty("health", described(openapi3.NewIntegerSchema(), "An indicator of the project's health on a scale from 0 to 100")).
		WithProperty("featureCount", described(openapi3.NewIntegerSchema(), "The number of features this project has")).
		WithProperty("memberCount", described(openapi3.NewIntegerSchema(), "The number of members this project has")).
		WithProperty("mode", modeSchema()).
		WithProperty("defaultStickiness", described(openapi3.NewStringSchema(), "A default stickiness for the project affecting the default stickiness value for variants and Gradual Rollout strategy")).
		WithProperty("createdAt", nullableDate("When this project was created")).
		WithProperty("updatedAt", nullableDate("When this project was last updated")))

	s.add("projectsSchema", object("An overview of all the projects in the instance", "version", "projects").
		WithProperty("version", described(openapi3.NewIntegerSchema(), "The schema version used to represent the project data")).
		WithProperty("projects", described(s.arrayOf("projectSchema"), "A list of projects")))

	s.add("createProjectSchema", closed(object("Data used to create a new project", "id", "name").
		WithProperty("id", described(
			openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(ProjectIDMaxLength).WithPattern(ProjectIDPattern),
			"The project's identifier, used in URLs")).
		WithProperty("name", described(openapi3.NewStringSchema().WithMinLength(1), "The project's name")).
		WithProperty("description", nullableString("The project's description")).
		WithProperty("mode", modeSchema()).
		WithProperty("defaultStickiness", described(openapi3.NewStringSchema(), "The default stickiness of the project"))))

	s.add("validateProjectSchema", object("A project id to validate", "id").
		WithProperty("id", described(openapi3.NewStringSchema(), "The project id to validate")))

	s.add("createdProjectSchema", object("The id of a newly created project", "projectId").
		WithProperty("projectId", described(openapi3.NewStringSchema(), "The id of the created project")))

	featureSummary := object("A feature toggle in a project overview", "name").
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("stale", openapi3.NewBoolSchema()).
		WithProperty("createdAt", nullableDate("When the feature was created")).
		WithProperty("archivedAt", nullableDate("When the feature was archived"))

	stats := object("Statistics for a project over the current and the previous 30 day window").
		WithProperty("createdCurrentWindow", openapi3.NewIntegerSchema()).
		WithProperty("createdPastWindow", openapi3.NewIntegerSchema()).
		WithProperty("archivedCurrentWindow", openapi3.NewIntegerSchema()).
		WithProperty("archivedPastWindow", openapi3.NewIntegerSchema()).
		WithProperty("avgTimeToProdCurrentWindow", described(openapi3.NewFloat64Schema(), "Average days from creation to first production enablement"))

	s.add("projectOverviewSchema", object("A high-level overview of a project", "name").
		WithProperty("version", openapi3.NewIntegerSchema()).
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of this project")).
		WithProperty("description", nullableString("Additional information about the project")).
		WithProperty("mode", modeSchema()).
		WithProperty("defaultStickiness", openapi3.NewStringSchema()).
		WithProperty("health", openapi3.NewIntegerSchema()).
		WithProperty("members", described(openapi3.NewIntegerSchema(), "The number of members this project has")).
		WithProperty("environments", stringArray("The environments that are enabled for this project")).
		WithProperty("features", openapi3.NewArraySchema().WithItems(featureSummary)).
		WithProperty("stats", stats).
		WithProperty("createdAt", nullableDate("When the project was created")).
		WithProperty("updatedAt", nullableDate("When the project was last updated")))

	s.add("projectDoraMetricsSchema", closed(object("DORA lead time metrics for a project", "features").
		WithProperty("projectAverage", described(openapi3.NewFloat64Schema(), "The average time in days from feature creation to production for the project")).
		WithProperty("features", openapi3.NewArraySchema().WithItems(
			object("", "name").
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("timeToProduction", described(openapi3.NewFloat64Schema(), "Days from creation to first production enablement")),
		))))

	s.add("permissionSchema", object("A permission granted by a role", "name").
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("name", described(openapi3.NewStringSchema(), "The name of the permission")).
		WithProperty("environment", nullableString("The environment the permission applies to, if any")))

	s.add("roleSchema", object("A role holds permissions to allow flagkeep to decide what actions a role holder is allowed to perform", "id", "type", "name").
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("type", described(openapi3.NewStringSchema(), "A role can either be a global root role, or a project role")).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("description", nullableString("A more detailed description of the role")))

	s.add("rolesSchema", object("A list of roles", "version", "roles").
		WithProperty("version", openapi3.NewIntegerSchema()).
		WithProperty("roles", s.arrayOf("roleSchema")))

	s.add("roleWithPermissionsSchema", object("A role and the permissions it grants", "id", "type", "name", "permissions").
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("description", nullableString("A more detailed description of the role")).
		WithProperty("permissions", s.arrayOf("permissionSchema")))

	s.add("createRoleSchema", closed(object("Data used to create or update a role", "name", "type").
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("description", nullableString("A more detailed description of the role")).
		WithProperty("type", openapi3.NewStringSchema().WithEnum("root-custom", "custom")).
		WithProperty("permissions", openapi3.NewArraySchema().WithItems(
			object("", "name").
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("environment", openapi3.NewStringSchema().WithNullable()),
		))))

	s.add("validateRoleSchema", object("A role name to validate", "name").
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("roleId", described(openapi3.NewIntegerSchema(), "Ignore this role when checking for duplicates")))

	s.add("changeRequestSchema", object("A change request", "id", "environment", "state").
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("project", openapi3.NewStringSchema()).
		WithProperty("environment", openapi3.NewStringSchema()).
		WithProperty("state", openapi3.NewStringSchema().WithEnum(
			"Draft", "In review", "Approved", "Applied", "Cancelled", "Rejected", "Scheduled",
		)).
		WithProperty("createdBy", openapi3.NewStringSchema()).
		WithProperty("createdAt", nullableDate("When the change request was created")))

	s.add("changeRequestsSchema", object("Change requests of a project", "changeRequests").
		WithProperty("changeRequests", s.arrayOf("changeRequestSchema")))

	s.add("eventSchema", object("An event describing something happening in the system", "id", "type", "createdBy", "createdAt").
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("type", described(openapi3.NewStringSchema(), "What type of event this is")).
		WithProperty("createdBy", described(openapi3.NewStringSchema(), "Which user created this event")).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("project", nullableString("The project the event relates to, if any")).
		WithProperty("data", described(openapi3.NewObjectSchema().WithNullable(), "Data relating to the current state of the event's subject")).
		WithProperty("preData", described(openapi3.NewObjectSchema().WithNullable(), "Data relating to the previous state of the event's subject")))

	s.add("eventsSchema", object("A list of events", "version", "events").
		WithProperty("version", openapi3.NewIntegerSchema()).
		WithProperty("events", s.arrayOf("eventSchema")).
		WithProperty("totalEvents", openapi3.NewIntegerSchema()))

	flags := described(openapi3.NewObjectSchema(), "Feature flags enabled on this instance")
	flags.AdditionalProperties = openapi3.AdditionalProperties{Schema: openapi3.NewSchemaRef("", openapi3.NewBoolSchema())}

	s.add("uiConfigSchema", object("Configuration for the console", "version").
		WithProperty("version", openapi3.NewStringSchema()).
		WithProperty("edition", openapi3.NewStringSchema()).
		WithProperty("segmentValuesLimit", openapi3.NewIntegerSchema()).
		WithProperty("flags", flags))

	adminRoute := object("An admin console route", "title", "path", "route").
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("path", described(openapi3.NewStringSchema(), "The link target")).
		WithProperty("route", described(openapi3.NewStringSchema(), "The route pattern, possibly ending in /*")).
		WithProperty("group", openapi3.NewStringSchema()).
		WithProperty("menu", object("").
			WithProperty("adminSettings", openapi3.NewBoolSchema()).
			WithProperty("mode", stringArray("Editions the route is shown for")).
			WithProperty("billing", openapi3.NewBoolSchema()))

	s.add("adminRoutesSchema", object("Admin routes and the tabs to show for a location", "routes", "tabs").
		WithProperty("routes", openapi3.NewArraySchema().WithItems(adminRoute)).
		WithProperty("group", nullableString("The group of the route matching the pathname")).
		WithProperty("activeTab", openapi3.NewStringSchema()).
		WithProperty("tabs", openapi3.NewArraySchema().WithItems(
			object("", "value", "title", "path").
				WithProperty("value", openapi3.NewStringSchema()).
				WithProperty("title", openapi3.NewStringSchema()).
				WithProperty("path", openapi3.NewStringSchema()),
		)))

	s.add("navigationSchema", object("Admin navigation menu", "items").
		WithProperty("items", openapi3.NewArraySchema().WithItems(
			object("", "title", "path").
				WithProperty("title", openapi3.NewStringSchema()).
				WithProperty("path", openapi3.NewStringSchema()).
				WithProperty("group", openapi3.NewStringSchema()).
				WithProperty("divider", described(openapi3.NewBoolSchema(), "Render a divider before this item")),
		)))

	s.add("loginSchema", object("Username and password", "username", "password").
		WithProperty("username", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("password", openapi3.NewStringSchema().WithMinLength(1)))

	s.add("sessionSchema", object("A session token and the user it belongs to", "token", "user").
		WithProperty("token", openapi3.NewStringSchema()).
		WithProperty("expiresAt", openapi3.NewDateTimeSchema()).
		WithPropertyRef("user", s.ref("userSchema")))

	s.add("meSchema", object("The current user and the permissions they hold", "user", "permissions").
		WithPropertyRef("user", s.ref("userSchema")).
		WithProperty("permissions", openapi3.NewArraySchema().WithItems(
			object("", "permission").
				WithProperty("permission", openapi3.NewStringSchema()).
				WithProperty("project", nullableString("The project the permission applies to")),
		)))

	s.add("healthSchema", object("The health of the server", "health").
		WithProperty("health", openapi3.NewStringSchema().WithEnum("GOOD", "BAD")))

	return s
}

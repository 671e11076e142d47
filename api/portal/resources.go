package portal

import (
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/samber/lo"
)

// Names of sub-resources other code reads from
const (
	ResourceMeetingTimes = "MEETING_TIMES_WITH_PROFS"
	ResourceAttributes   = "SECTION_ATTRIBUTES"
	ResourcePrereqs      = "SECTION_PREREQS"
	ResourceBookstore    = "BOOKSTORE_LINKS"
)

const (
	generalInfoPath = "/api/course-section-details"
	classesPath     = "/api/course-sections"
	termsPath       = "/api/all-terms"
	primePath       = "/uPortal/favicon.ico"

	seatPagePath = "/pls/PROD/bwykschd.p_disp_detail_sched"
	showDocPath  = "/pls/PROD/bwykfupd.p_showdoc"
)

// Resources is the catalog of secondary queries issued for every section
var Resources = []section.Resource{
	{Name: ResourceAttributes, Path: "/api/section-attributes"},
	{Name: ResourcePrereqs, Path: "/api/section-prereqs"},
	{Name: ResourceBookstore, Path: "/api/section-bookstore-links"},
	{Name: ResourceMeetingTimes, Path: "/api/section-meeting-times-with-profs"},
	{Name: "SECTION_PROGRAM_RESTRICTIONS", Path: "/api/section-program-restrictions"},
	{Name: "SECTION_COLLEGE_RESTRICTIONS", Path: "/api/section-college-restrictions"},
	{Name: "SECTION_LEVEL_RESTRICTIONS", Path: "/api/section-level-restrictions"},
	{Name: "SECTION_DEGREE_RESTRICTIONS", Path: "/api/section-degree-restrictions"},
	{Name: "SECTION_MAJOR_RESTRICTIONS", Path: "/api/section-major-restrictions"},
	{Name: "SECTION_MINOR_RESTRICTIONS", Path: "/api/section-minor-restrictions"},
	{Name: "SECTION_CONCENTRATIONS_RESTRICTIONS", Path: "/api/section-concentrations-restrictions"},
	{Name: "SECTION_FIELD_OF_STUDY_RESTRICTIONS", Path: "/api/section-field-of-study-restrictions"},
	{Name: "SECTION_DEPARTMENT_RESTRICTIONS", Path: "/api/section-department-restrictions"},
	{Name: "SECTION_COHORT_RESTRICTIONS", Path: "/api/section-cohort-restrictions"},
	{Name: "SECTION_STUDENT_ATTRIBUTE_RESTRICTIONS", Path: "/api/section-student-attribute-restrictions"},
	{Name: "SECTION_CLASSIFICATION_RESTRICTIONS", Path: "/api/section-classifications-restrictions"},
	{Name: "SECTION_CAMPUS_RESTRICTIONS", Path: "/api/section-campus-restrictions"},
}

// Resource looks up a catalog entry by name
func Resource(name string) (section.Resource, bool) {
	return lo.Find(Resources, func(r section.Resource) bool {
		return r.Name == name
	})
}

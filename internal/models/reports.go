package models

import "time"

// ReportChannel identifies the inbound source a raw report arrived through.
type ReportChannel string

const (
	ChannelGeneric    ReportChannel = "Generic"
	ChannelSmsEagle   ReportChannel = "SmsEagle"
	ChannelSmsGateway ReportChannel = "SmsGateway"
	ChannelMtnGateway ReportChannel = "MtnGateway"
	ChannelTelerivet  ReportChannel = "Telerivet"
)

// RawReportSubmission is the common shape every channel normalizer produces.
// It is constructed once per inbound request and consumed by the enqueue step;
// it is never persisted by the gateway itself.
type RawReportSubmission struct {
	SourceChannel  ReportChannel     `json:"source_channel"`
	RawText        string            `json:"raw_text"`
	ReceivedFields map[string]string `json:"received_fields,omitempty"`
	ApiKey         string            `json:"-"`
	TransactionId  string            `json:"transaction_id,omitempty"`
}

type ReportStatus string

const (
	ReportStatusNew      ReportStatus = "New"
	ReportStatusAccepted ReportStatus = "Accepted"
	ReportStatusRejected ReportStatus = "Rejected"
)

type ReportType string

const (
	ReportTypeSingle              ReportType = "Single"
	ReportTypeAggregate           ReportType = "Aggregate"
	ReportTypeDataCollectionPoint ReportType = "DataCollectionPoint"
	ReportTypeActivity            ReportType = "Activity"
)

type HealthRiskType string

const (
	HealthRiskHuman        HealthRiskType = "Human"
	HealthRiskNonHuman     HealthRiskType = "NonHuman"
	HealthRiskUnusualEvent HealthRiskType = "UnusualEvent"
	HealthRiskActivity     HealthRiskType = "Activity"
)

type DataCollectorType string

const (
	DataCollectorHuman           DataCollectorType = "Human"
	DataCollectorCollectionPoint DataCollectorType = "CollectionPoint"
	DataCollectorUnknownSender   DataCollectorType = "UnknownSender"
)

// Location of a report, resolved from the sender's village registration.
type Location struct {
	RegionId     int    `json:"region_id"`
	RegionName   string `json:"region_name"`
	DistrictId   int    `json:"district_id"`
	DistrictName string `json:"district_name"`
	VillageId    int    `json:"village_id"`
	VillageName  string `json:"village_name"`
	ZoneId       int    `json:"zone_id,omitempty"`
	ZoneName     string `json:"zone_name,omitempty"`
}

// DataCollector is the field agent or collection point a report was matched to.
// Organizational ownership follows the supervisor or head supervisor linkage.
type DataCollector struct {
	Id               int               `json:"id"`
	Name             string            `json:"name"`
	DisplayName      string            `json:"display_name"`
	Type             DataCollectorType `json:"type"`
	SupervisorId     int               `json:"supervisor_id"`
	SupervisorName   string            `json:"supervisor_name"`
	HeadSupervisorId int               `json:"head_supervisor_id"`
	IsDeleted        bool              `json:"is_deleted"`
}

// ReportedCase carries the demographic case counters of a single report.
type ReportedCase struct {
	CountMalesBelowFive       int `json:"count_males_below_five"`
	CountMalesAtLeastFive     int `json:"count_males_at_least_five"`
	CountFemalesBelowFive     int `json:"count_females_below_five"`
	CountFemalesAtLeastFive   int `json:"count_females_at_least_five"`
	CountUnspecifiedSexAndAge int `json:"count_unspecified_sex_and_age"`
}

// Report is the persisted entity read by the query and aggregation engines.
// EpiYear and EpiWeek are stamped when the report is persisted and must always
// agree with a recomputation from ReceivedAt and the configured week start day.
type Report struct {
	Id                int            `json:"id"`
	NationalSocietyId int            `json:"national_society_id"`
	ProjectId         int            `json:"project_id"`
	ReceivedAt        time.Time      `json:"received_at"`
	ReportedCaseCount int            `json:"reported_case_count"`
	ReportedCase      ReportedCase   `json:"reported_case"`
	Status            ReportStatus   `json:"status"`
	ReportType        ReportType     `json:"report_type"`
	HealthRiskId      int            `json:"health_risk_id"`
	HealthRiskType    HealthRiskType `json:"health_risk_type"`
	EpiYear           int            `json:"epi_year"`
	EpiWeek           int            `json:"epi_week"`
	Location          *Location      `json:"location,omitempty"`
	DataCollector     *DataCollector `json:"data_collector,omitempty"`
	Sender            string         `json:"sender"`
	Text              string         `json:"text"`
	IsTraining        bool           `json:"is_training"`
	IsCorrected       bool           `json:"is_corrected"`
	ErrorType         string         `json:"error_type,omitempty"`
	AcceptedAt        *time.Time     `json:"accepted_at,omitempty"`
	AcceptedBy        string         `json:"accepted_by,omitempty"`
	RejectedAt        *time.Time     `json:"rejected_at,omitempty"`
	RejectedBy        string         `json:"rejected_by,omitempty"`
	ContentLanguage   string         `json:"content_language,omitempty"`
}

// UserRole mirrors the platform roles that matter for report visibility.
type UserRole string

const (
	RoleAdministrator  UserRole = "Administrator"
	RoleManager        UserRole = "Manager"
	RoleSupervisor     UserRole = "Supervisor"
	RoleHeadSupervisor UserRole = "HeadSupervisor"
)

// OrganizationLink ties a national society user to an organization. Report
// ownership is resolved per row through the data collector's supervisor or
// head supervisor; membership can change between requests, so links are read
// fresh for every query.
type OrganizationLink struct {
	NationalSocietyId int    `json:"national_society_id"`
	UserId            int    `json:"user_id"`
	OrganizationId    int    `json:"organization_id"`
	OrganizationName  string `json:"organization_name"`
}

package models

const (
	STATUS_UP         = "UP"
	STATUS_DEGRADED   = "DEGRADED"
	STATUS_DOWN       = "DOWN"
	HEALTH_ISSUE_NONE = "None reported"
	//
	AZ_BLOB_CLIENT_NA = "error: client not available, check config"
	//
	SERVICE_BUS  = "Azure Service Bus"
	KEY_STORE    = "Authorized Key Store"
	REPORT_STORE = "Report Store"
	REGISTRATION = "Case Registration"
) // .const

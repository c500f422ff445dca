package client

const (
	// API version prefix
	apiV1Prefix = "/v1"

	// Authentication endpoints
	endpointLogin  = apiV1Prefix + "/login"  // POST
	endpointLogout = apiV1Prefix + "/logout" // POST

	// User endpoints
	endpointUsers        = apiV1Prefix + "/users"    // GET, POST
	endpointUserByHandle = apiV1Prefix + "/user/%s"  // GET, PATCH, DELETE

	// Dataset endpoints
	endpointDatasets      = apiV1Prefix + "/datasets"          // GET, POST
	endpointDatasetByID   = apiV1Prefix + "/dataset/%d"        // GET, PATCH, DELETE
	endpointDatasetUpload = apiV1Prefix + "/dataset/%d/upload" // POST, text/csv body

	// Budget endpoints
	endpointBudgetUser       = apiV1Prefix + "/budget/user/%s"          // GET
	endpointBudgetDataset    = apiV1Prefix + "/budget/dataset/%d"       // GET
	endpointBudgetAllocation = apiV1Prefix + "/budget/allocation/%s/%d" // GET, POST, PATCH, DELETE

	// Query endpoints
	endpointQueryEvaluate = apiV1Prefix + "/query/evaluate"       // POST
	endpointQueryAccuracy = apiV1Prefix + "/query/accuracy/%s/%d" // POST
)

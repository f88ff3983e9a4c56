package model

// WebhookLogItem is one audit record of a call to or from the automation
// service, stored in DynamoDB.
type WebhookLogItem struct {
	LogID      string            `dynamodbav:"logId" json:"id"`
	Endpoint   string            `dynamodbav:"endpoint" json:"endpoint"`
	Method     string            `dynamodbav:"method" json:"method"`
	Payload    string            `dynamodbav:"payload,omitempty" json:"payload,omitempty"`
	Headers    map[string]string `dynamodbav:"headers,omitempty" json:"headers,omitempty"`
	StatusCode int               `dynamodbav:"statusCode" json:"statusCode"`
	Response   string            `dynamodbav:"response,omitempty" json:"response,omitempty"`
	Error      string            `dynamodbav:"error,omitempty" json:"error,omitempty"`
	CreatedAt  string            `dynamodbav:"createdAt" json:"createdAt"`
}

package bootstrapper

const SpanIndexName = "chaos-spans"

var spanIndex = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"span_id": map[string]interface{}{
				"type": "keyword",
			},
			"parent_span_id": map[string]interface{}{
				"type": "keyword",
			},
			"trace_id": map[string]interface{}{
				"type": "keyword",
			},
			"name": map[string]interface{}{
				"type": "keyword",
			},
			"service_name": map[string]interface{}{
				"type": "keyword",
			},
			"start_time": map[string]interface{}{
				"type": "date_nanos",
			},
			"end_time": map[string]interface{}{
				"type": "date_nanos",
			},
			"status": map[string]interface{}{
				"type": "keyword",
			},
			"error_info": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code": map[string]interface{}{
						"type": "keyword",
					},
					"message": map[string]interface{}{
						"type": "text",
					},
				},
			},
			"attributes": map[string]interface{}{
				"type": "object",
				"enabled": true,
			},
		},
	},
}

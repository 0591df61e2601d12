package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SurveyPayloadKey returns the cache key for a published survey's
// respondent-facing payload.
func (r *CacheKeyStruct) SurveyPayloadKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:payload", surveyID)
}

// SurveyDefinitionKey returns the cache key for a published survey's full
// definition (questions with scoring metadata and logic rules).
func (r *CacheKeyStruct) SurveyDefinitionKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:definition", surveyID)
}

// ResponseAnswersKey returns the cache key for a respondent session's
// running answer map.
func (r *CacheKeyStruct) ResponseAnswersKey(surveyID, responseID string) string {
	return fmt.Sprintf("survey:%s:response:%s:answers", surveyID, responseID)
}

var CacheKey = NewCacheKeyStruct()

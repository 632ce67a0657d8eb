// Copyright 2024 ServerWatch Authors All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

// RequestID - stamps every response with a unique id for log correlation
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Request-Id", xid.New().String())
		c.Next()
	}
}

// APIKeyRequired - shared-token check for mutating routes. Accepts the bare
// token or a Bearer prefix in the Authorization header. Rejected requests
// never reach the handler, so no mutation happens on a bad key.
func APIKeyRequired(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" || token != apiKey {
			AbortWithError(c, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		c.Next()
	}
}

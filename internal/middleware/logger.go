package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
)

// RequestLogger writes one structured access-log line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogURI:       true,
        LogMethod:    true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency.Round(time.Microsecond)),
                zap.String("ip", v.RemoteIP),
                zap.String("user", userID(c)),
            }
            if v.RequestID != "" {
                fields = append(fields, zap.String("request_id", v.RequestID))
            }
            switch {
            case v.Error != nil:
                log.Error("request", append(fields, zap.Error(v.Error))...)
            case v.Status >= 500:
                log.Error("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        },
    })
}

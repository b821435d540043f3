package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/coordination-service/internal/application"
	"github.com/wms-platform/coordination-service/pkg/errors"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/middleware"
)

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
}

func createTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Kind           string `json:"kind" binding:"required,task_kind"`
			SKU            string `json:"sku" binding:"required"`
			Quantity       int    `json:"quantity"`
			LocationID     string `json:"locationId" binding:"required"`
			ASNID          string `json:"asnId"`
			ToLocation     string `json:"toLocation"`
			SystemQuantity int    `json:"systemQuantity"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		task, err := service.CreateTask(c.Request.Context(), application.CreateTaskCommand{
			Kind:           req.Kind,
			SKU:            req.SKU,
			Quantity:       req.Quantity,
			LocationID:     req.LocationID,
			ASNID:          req.ASNID,
			ToLocation:     req.ToLocation,
			SystemQuantity: req.SystemQuantity,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, task)
	}
}

func listClaimableTasksHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		tasks, err := service.ListClaimable(c.Request.Context(), application.ListClaimableQuery{
			Kind:  c.Query("kind"),
			Limit: parseIntQuery(c, "limit"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
	}
}

func listMyTasksHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		workerID := c.Query("workerId")
		if workerID == "" {
			responder.RespondBadRequest("workerId query parameter is required")
			return
		}

		tasks, err := service.ListMine(c.Request.Context(), workerID)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
	}
}

func getTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		task, err := service.GetTask(c.Request.Context(), application.GetTaskQuery{
			TaskID: c.Param("taskId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func claimTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WorkerID string `json:"workerId" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		task, err := service.Claim(c.Request.Context(), application.ClaimTaskCommand{
			TaskID:   c.Param("taskId"),
			WorkerID: req.WorkerID,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func releaseTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WorkerID string `json:"workerId" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		task, err := service.Release(c.Request.Context(), application.ReleaseTaskCommand{
			TaskID:   c.Param("taskId"),
			WorkerID: req.WorkerID,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func completeTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WorkerID        string `json:"workerId" binding:"required"`
			CountedQuantity *int   `json:"countedQuantity"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		result, err := service.Complete(c.Request.Context(), application.CompleteTaskCommand{
			TaskID:          c.Param("taskId"),
			WorkerID:        req.WorkerID,
			CountedQuantity: req.CountedQuantity,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func createWaveHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Shipments []struct {
				Lines []struct {
					SKU        string `json:"sku" binding:"required,sku"`
					Quantity   int    `json:"quantity" binding:"required,min=1"`
					LocationID string `json:"locationId" binding:"required"`
				} `json:"lines" binding:"required,min=1,dive"`
			} `json:"shipments" binding:"dive"`
			ShipmentIDs []string `json:"shipmentIds"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateWaveCommand{ShipmentIDs: req.ShipmentIDs}
		for _, shipment := range req.Shipments {
			input := application.ShipmentInput{}
			for _, line := range shipment.Lines {
				input.Lines = append(input.Lines, application.ShipmentLineInput{
					SKU:        line.SKU,
					Quantity:   line.Quantity,
					LocationID: line.LocationID,
				})
			}
			cmd.Shipments = append(cmd.Shipments, input)
		}

		wave, err := service.CreateWave(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, wave)
	}
}

func getWaveHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		wave, err := service.GetWave(c.Request.Context(), application.GetWaveQuery{
			WaveID: c.Param("waveId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, wave)
	}
}

func releaseWaveHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		result, err := service.ReleaseWave(c.Request.Context(), application.ReleaseWaveCommand{
			WaveID: c.Param("waveId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func createShipmentHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Lines []struct {
				SKU        string `json:"sku" binding:"required,sku"`
				Quantity   int    `json:"quantity" binding:"required,min=1"`
				LocationID string `json:"locationId" binding:"required"`
			} `json:"lines" binding:"required,min=1,dive"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateShipmentCommand{}
		for _, line := range req.Lines {
			cmd.Lines = append(cmd.Lines, application.ShipmentLineInput{
				SKU:        line.SKU,
				Quantity:   line.Quantity,
				LocationID: line.LocationID,
			})
		}

		shipment, err := service.CreateShipment(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, shipment)
	}
}

func getShipmentHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shipment, err := service.GetShipment(c.Request.Context(), application.GetShipmentQuery{
			ShipmentID: c.Param("shipmentId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, shipment)
	}
}

func startPackingHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shipment, err := service.StartPacking(c.Request.Context(), application.StartPackingCommand{
			ShipmentID: c.Param("shipmentId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, shipment)
	}
}

func confirmShipHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Carrier   string  `json:"carrier" binding:"required,carrier_code"`
			ShippedBy string  `json:"shippedBy" binding:"required"`
			WeightKg  float64 `json:"weightKg" binding:"min=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		result, err := service.ConfirmShip(c.Request.Context(), application.ConfirmShipCommand{
			ShipmentID: c.Param("shipmentId"),
			Carrier:    req.Carrier,
			ShippedBy:  req.ShippedBy,
			WeightKg:   req.WeightKg,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func listHandOffsHandler(service *application.LifecycleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		records, err := service.ListHandOffs(c.Request.Context(), application.ListHandOffsQuery{
			ShipmentID: c.Param("shipmentId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"handOffs": records, "count": len(records)})
	}
}

func openTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Type        string `json:"type" binding:"required,ticket_type"`
			Priority    string `json:"priority" binding:"required,ticket_priority"`
			Description string `json:"description" binding:"required,safe_string"`
			TaskID      string `json:"taskId"`
			LocationID  string `json:"locationId"`
			SKU         string `json:"sku"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		ticket, err := service.OpenTicket(c.Request.Context(), application.OpenTicketCommand{
			Type:        req.Type,
			Priority:    req.Priority,
			Description: req.Description,
			TaskID:      req.TaskID,
			LocationID:  req.LocationID,
			SKU:         req.SKU,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, ticket)
	}
}

func listTicketsHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		tickets, err := service.ListTickets(c.Request.Context(), application.ListTicketsQuery{
			Status:   c.Query("status"),
			Priority: c.Query("priority"),
			Limit:    parseIntQuery(c, "limit"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
	}
}

func ticketStatsHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stats, err := service.GetStats(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func getTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ticket, err := service.GetTicket(c.Request.Context(), application.GetTicketQuery{
			TicketID: c.Param("ticketId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ticket)
	}
}

func assignTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Assignee string `json:"assignee" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		ticket, err := service.AssignTicket(c.Request.Context(), application.AssignTicketCommand{
			TicketID: c.Param("ticketId"),
			Assignee: req.Assignee,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ticket)
	}
}

func resolveTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Resolution string `json:"resolution" binding:"required,safe_string"`
			ResolvedBy string `json:"resolvedBy" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		ticket, err := service.ResolveTicket(c.Request.Context(), application.ResolveTicketCommand{
			TicketID:   c.Param("ticketId"),
			Resolution: req.Resolution,
			ResolvedBy: req.ResolvedBy,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ticket)
	}
}

func closeTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ticket, err := service.CloseTicket(c.Request.Context(), application.CloseTicketCommand{
			TicketID: c.Param("ticketId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ticket)
	}
}

func reopenTicketHandler(service *application.TicketApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ticket, err := service.ReopenTicket(c.Request.Context(), application.ReopenTicketCommand{
			TicketID: c.Param("ticketId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ticket)
	}
}

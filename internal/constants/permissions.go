package constants

const (
	ManageShips    = "manage_ships"
	CreateDemand   = "create_demand"
	ManageDemand   = "manage_demand"
	ApproveDemand  = "approve_demand"
	SubmitOffer    = "submit_offer"
	AcceptOffer    = "accept_offer"
	SendNomination = "send_nomination"
	ReadNomination = "read_nomination"
	SubmitReview   = "submit_review"
	RegisterPorts  = "register_ports"
	SubmitPda      = "submit_pda"
	ReviewPda      = "review_pda"
	ManagePdaItems = "manage_pda_items"
	RequestUpload  = "request_upload"
)
